package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"

	"warbler/domain"
	"warbler/errs"
)

const githubProvider = "github"

// githubUser is the portion of the GitHub /user API response we care about.
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// registerOAuthRoutes is a helper for registering the GitHub login routes.
// The routes 404 when no GitHub client is configured.
func (s *Server) registerOAuthRoutes(r *mux.Router) {
	r.HandleFunc("/oauth/github", s.handleGithubLogin).Methods("GET")
	r.HandleFunc("/oauth/github/callback", s.handleGithubCallback).Methods("GET")
}

// handleGithubLogin handles the route "GET /oauth/github".
// It stores a random state in the session and sends the user to GitHub's
// authorization endpoint.
func (s *Server) handleGithubLogin(w http.ResponseWriter, r *http.Request) {
	if s.github == nil {
		http.NotFound(w, r)
		return
	}
	state := base64.URLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
	session, _ := s.sessions.Get(r, sessionName)
	session.Values["oauth_state"] = state
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
	http.Redirect(w, r, s.github.AuthCodeURL(state), http.StatusFound)
}

// handleGithubCallback handles the route "GET /oauth/github/callback".
// It verifies the state, exchanges the code for a token, fetches the GitHub
// profile, finds or creates the matching user, and opens a session.
func (s *Server) handleGithubCallback(w http.ResponseWriter, r *http.Request) {
	if s.github == nil {
		http.NotFound(w, r)
		return
	}
	session, _ := s.sessions.Get(r, sessionName)
	state, _ := session.Values["oauth_state"].(string)
	delete(session.Values, "oauth_state")
	if state == "" || r.URL.Query().Get("state") != state {
		s.flashAndRedirect(w, r, "Access unauthorized.", "/")
		return
	}

	token, err := s.github.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.flashAndRedirect(w, r, "GitHub login failed.", "/")
		return
	}

	resp, err := s.github.Client(r.Context(), token).Get("https://api.github.com/user")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.flashAndRedirect(w, r, "GitHub login failed.", "/")
		return
	}
	var gh githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil || gh.ID == 0 {
		s.flashAndRedirect(w, r, "GitHub login failed.", "/")
		return
	}

	user, err := s.userForGithub(r, &gh)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.signIn(w, r, user)
	http.Redirect(w, r, "/", http.StatusFound)
}

// userForGithub resolves a GitHub profile to a local user, creating the
// user and the provider link on first login. OAuth users get a random
// password they never see; they can only sign in through the provider.
func (s *Server) userForGithub(r *http.Request, gh *githubUser) (*domain.User, error) {
	providerUserID := strconv.FormatInt(gh.ID, 10)

	oauth, err := s.os.ByProviderUserID(githubProvider, providerUserID)
	if err == nil {
		return s.us.ByID(oauth.UserID)
	}
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		return nil, err
	}

	// GitHub hides the email when the user opts out of sharing it.
	email := gh.Email
	if email == "" {
		email = gh.Login + "@users.noreply.github.com"
	}

	user := &domain.User{
		Username: gh.Login,
		Email:    email,
		ImageURL: gh.AvatarURL,
		Password: base64.URLEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}
	if err := s.us.Create(r.Context(), user); err != nil {
		return nil, err
	}
	err = s.os.Create(r.Context(), &domain.OAuth{
		UserID:         user.ID,
		Provider:       githubProvider,
		ProviderUserID: providerUserID,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
