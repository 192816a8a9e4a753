package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/crud"
	"warbler/domain"
)

const (
	testSessionKey = "test-session-key"
	testPepper     = "test-pepper"
)

// newTestServer stands up the full handler stack on an in-memory database
// and serves it over a real listener, so tests exercise routing, middleware
// and cookies exactly as a browser would. CSRF stays off, as hand-built
// form posts carry no token.
func newTestServer(t *testing.T) (*crud.Services, *httptest.Server) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		domain.User{},
		domain.OAuth{},
		domain.Message{},
		domain.Follow{},
		domain.Like{},
	)
	require.NoError(t, err)

	services, err := crud.NewServices(
		db,
		crud.WithUser(testPepper),
		crud.WithMessage(),
		crud.WithFollow(),
		crud.WithLike(),
		crud.WithOAuth(),
	)
	require.NoError(t, err)

	server := NewServer(ServerConfig{
		SessionKey:  testSessionKey,
		CSRFEnabled: false,
	}, services)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return services, ts
}

// createTestUser signs up a user with the password "password".
func createTestUser(t *testing.T, us *crud.UserService, id int, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:       id,
		Username: username,
		Email:    username + "@email.com",
		Password: "password",
	}
	require.NoError(t, us.Create(context.Background(), user))
	return user
}

// sessionCookie builds the cookie a browser would hold after the given user
// signed in, without going through the login form. It encodes the session
// with the same key the test server uses. Encoding an ID that has no user
// record yields a stale but well-formed session.
func sessionCookie(t *testing.T, userID int) *http.Cookie {
	t.Helper()
	codecs := securecookie.CodecsFromPairs([]byte(testSessionKey))
	values := map[interface{}]interface{}{currUserKey: userID}
	encoded, err := securecookie.EncodeMulti(sessionName, values, codecs...)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionName, Value: encoded, Path: "/"}
}

// newClient returns an http client with a cookie jar that follows redirects,
// mirroring a browser. A non-zero userID pre-seeds the jar with a session
// for that user; zero leaves the client anonymous.
func newClient(t *testing.T, ts *httptest.Server, userID int) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	if userID != 0 {
		u, err := url.Parse(ts.URL)
		require.NoError(t, err)
		jar.SetCookies(u, []*http.Cookie{sessionCookie(t, userID)})
	}
	return &http.Client{Jar: jar}
}

// newNoRedirectClient is newClient for tests that assert on the redirect
// itself rather than on the page it leads to.
func newNoRedirectClient(t *testing.T, ts *httptest.Server, userID int) *http.Client {
	t.Helper()
	client := newClient(t, ts, userID)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
