package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"warbler/crud"
	"warbler/monitoring"
)

// sessionName is the name of the session cookie.
const sessionName = "warbler_session"

// ServerConfig carries the knobs the server needs from the app config.
// CSRF protection is real middleware in production and switched off in
// tests, where hand-built form posts would otherwise all be rejected.
type ServerConfig struct {
	SessionKey  string
	CSRFKey     string
	CSRFEnabled bool
	GitHub      *oauth2.Config
}

// Server provides the http functionality of the app: routing, request
// handling and middleware. It performs authentication and authorization
// before handing things over to one of the crud services.
type Server struct {
	router   *mux.Router
	sessions *sessions.CookieStore

	github *oauth2.Config

	us *crud.UserService
	ms *crud.MessageService
	fs *crud.FollowService
	ls *crud.LikeService
	os *crud.OAuthService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(config ServerConfig, services *crud.Services) *Server {
	store := sessions.NewCookieStore([]byte(config.SessionKey))
	store.Options.HttpOnly = true

	s := &Server{
		router:   mux.NewRouter(),
		sessions: store,
		github:   config.GitHub,
		us:       services.User,
		ms:       services.Message,
		fs:       services.Follow,
		ls:       services.Like,
		os:       services.OAuth,
	}

	s.registerAuthRoutes(s.router)
	s.registerOAuthRoutes(s.router)
	s.registerUserRoutes(s.router)
	s.registerMessageRoutes(s.router)

	s.router.HandleFunc("/", s.handleHome).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router.Use(monitoring.InstrumentHandler, logRequest, s.loadUser)
	if config.CSRFEnabled {
		csrfMw := csrf.Protect([]byte(config.CSRFKey), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	return s
}

// ServeHTTP makes the server usable as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	addr := ":" + strconv.Itoa(port)
	logrus.WithField("addr", addr).Info("server listening")
	logrus.Fatal(http.ListenAndServe(addr, s.router))
}

// logRequest logs every request with method, path, status and duration.
func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// statusWriter captures the status code a handler writes.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
