package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
	"warbler/monitoring"
)

// registerUserRoutes is a helper for registering all user routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	// List users, optionally filtered by a username substring.
	r.HandleFunc("/users", s.handleUsersIndex).Methods("GET")

	// Show a user's profile with their messages.
	r.HandleFunc("/users/{id:[0-9]+}", s.handleUserShow).Methods("GET")

	// The users a user follows / is followed by / the messages they like.
	r.HandleFunc("/users/{id:[0-9]+}/following", s.requireAuth(s.handleFollowing)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/followers", s.requireAuth(s.handleFollowers)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/likes", s.requireAuth(s.handleUserLikes)).Methods("GET")

	// Update the current user's profile.
	r.HandleFunc("/users/update", s.requireAuth(s.handleUpdateProfile)).Methods("POST")

	// Create / destroy a follow edge from the current user.
	r.HandleFunc("/users/follow/{id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/users/stop-following/{id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("POST")

	// Toggle a like on a message.
	r.HandleFunc("/users/add_like/{message_id:[0-9]+}", s.requireAuth(s.handleAddLike)).Methods("POST")
}

// handleHome handles the route "GET /".
// Authenticated users see their feed, anonymous visitors a welcome page.
// Either way the page renders pending flash messages.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		s.render(w, r, "home", map[string]interface{}{})
		return
	}
	feed, err := s.ms.Feed(user.ID, 100)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.render(w, r, "home", map[string]interface{}{
		"Messages": feed,
	})
}

// handleUsersIndex handles the route "GET /users".
// The optional query parameter q filters by username substring.
func (s *Server) handleUsersIndex(w http.ResponseWriter, r *http.Request) {
	users, err := s.us.Search(r.URL.Query().Get("q"))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.render(w, r, "users", map[string]interface{}{
		"Users": users,
	})
}

// handleUserShow handles the route "GET /users/{id}".
// It shows the user's profile and messages; 404 when the user is missing,
// regardless of who asks.
func (s *Server) handleUserShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	user, err := s.us.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	messages, err := s.ms.ByUserID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followers, err := s.fs.CountFollowers(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	following, err := s.fs.CountFollowing(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.render(w, r, "user", map[string]interface{}{
		"User":           user,
		"Messages":       messages,
		"FollowerCount":  followers,
		"FollowingCount": following,
	})
}

// handleUpdateProfile handles the route "POST /users/update".
// It updates the current user's profile from the submitted form. Empty
// fields keep their current value; a new password is re-hashed, a blank
// one leaves the existing hash untouched.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if v := r.PostFormValue("username"); v != "" {
		user.Username = v
	}
	if v := r.PostFormValue("email"); v != "" {
		user.Email = v
	}
	if v := r.PostFormValue("image_url"); v != "" {
		user.ImageURL = v
	}
	user.Password = r.PostFormValue("password")

	if err := s.us.Update(r.Context(), user); err != nil {
		switch errs.ErrorCode(err) {
		case errs.EINVALID, errs.ECONFLICT:
			s.flashAndRedirect(w, r, errs.ErrorMessage(err), fmt.Sprintf("/users/%d", user.ID))
		default:
			errs.ReturnError(w, r, err)
		}
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// handleFollowing handles the route "GET /users/{id}/following".
func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	s.renderFollowList(w, r, "Following", s.fs.Following)
}

// handleFollowers handles the route "GET /users/{id}/followers".
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	s.renderFollowList(w, r, "Followers", s.fs.Followers)
}

// renderFollowList shows one side of a user's follow edges. The user whose
// page is requested must exist; the viewer just has to be signed in.
func (s *Server) renderFollowList(w http.ResponseWriter, r *http.Request, title string, fetch func(int) ([]domain.User, error)) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	if _, err := s.us.ByID(id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	users, err := fetch(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.render(w, r, "users", map[string]interface{}{
		"Title": title,
		"Users": users,
	})
}

// handleUserLikes handles the route "GET /users/{id}/likes".
// It lists the messages the user currently likes.
func (s *Server) handleUserLikes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	if _, err := s.us.ByID(id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	messages, err := s.ls.ByUserID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.render(w, r, "home", map[string]interface{}{
		"Messages": messages,
	})
}

// handleCreateFollow handles the route "POST /users/follow/{id}".
// The current user starts following the given user.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	user := getUser(r.Context())
	follow := domain.Follow{FollowerID: user.ID, FollowedID: followedID}
	if err := s.fs.Create(r.Context(), &follow); err != nil {
		switch errs.ErrorCode(err) {
		case errs.ECONFLICT:
			s.flashAndRedirect(w, r, errs.ErrorMessage(err), fmt.Sprintf("/users/%d/following", user.ID))
		default:
			errs.ReturnError(w, r, err)
		}
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// handleDeleteFollow handles the route "POST /users/stop-following/{id}".
// The current user stops following the given user.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	user := getUser(r.Context())
	if err := s.fs.Delete(r.Context(), user.ID, followedID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// handleAddLike handles the route "POST /users/add_like/{message_id}".
// Liking an unliked message creates the edge, liking it again removes it.
// There is no separate unlike endpoint.
func (s *Server) handleAddLike(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.Atoi(mux.Vars(r)["message_id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	user := getUser(r.Context())
	if _, err := s.ls.Toggle(r.Context(), user.ID, messageID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	monitoring.LikesToggled.Inc()
	http.Redirect(w, r, "/", http.StatusFound)
}
