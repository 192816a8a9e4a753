package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
	"warbler/monitoring"
)

// currUserKey is the session key holding the authenticated user's ID.
// Its absence means the client is anonymous.
const currUserKey = "curr_user"

type contextKey string

const userContextKey contextKey = "user"

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/signup", s.handleSignup).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods("POST")
}

// handleSignup handles the route "POST /signup".
// It creates a new user from the submitted form and opens a session for it.
// Validation failures and username/email conflicts come back as a flash
// message, never as a raw fault.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	user := domain.User{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		ImageURL: r.PostFormValue("image_url"),
	}
	if err := s.us.Create(r.Context(), &user); err != nil {
		switch errs.ErrorCode(err) {
		case errs.EINVALID, errs.ECONFLICT:
			s.flashAndRedirect(w, r, errs.ErrorMessage(err), "/")
		default:
			errs.ReturnError(w, r, err)
		}
		return
	}
	monitoring.SignupSuccess.Inc()
	s.signIn(w, r, &user)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogin handles the route "POST /login".
// A failed login does not reveal whether the username or the password was
// wrong; the user service already collapses the two cases.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := s.us.Authenticate(username, password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if user == nil {
		monitoring.LoginFailure.Inc()
		s.flashAndRedirect(w, r, "Invalid credentials.", "/")
		return
	}
	monitoring.LoginSuccess.Inc()
	s.signIn(w, r, user)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout handles the route "POST /logout".
// It clears the session key, turning the client anonymous again.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	delete(session.Values, currUserKey)
	session.AddFlash("You have successfully logged out.")
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// signIn stores the user's ID in the session, making it the current user.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user *domain.User) {
	session, _ := s.sessions.Get(r, sessionName)
	session.Values[currUserKey] = user.ID
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
}

// loadUser resolves the session's user ID to a user record on every request
// and stores it in the request context. A missing key, or an ID whose user
// no longer exists, leaves the request anonymous.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Get(r, sessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := session.Values[currUserKey].(int)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(id)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(setUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth gates mutating actions. Anonymous requests are never answered
// with a 401 or 403: they get the "Access unauthorized." flash and a
// redirect to a safe page.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if getUser(r.Context()) == nil {
			s.unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// unauthorized is the single denial path of the authorization gate.
func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	s.flashAndRedirect(w, r, "Access unauthorized.", "/")
}

// flashAndRedirect stores a flash message and redirects. Following the
// redirect yields a 200 page carrying the message.
func (s *Server) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, url string) {
	session, _ := s.sessions.Get(r, sessionName)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func setUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func getUser(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userContextKey).(*domain.User); ok {
		return user
	}
	return nil
}
