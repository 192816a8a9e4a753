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

// registerMessageRoutes is a helper for registering all message routes.
func (s *Server) registerMessageRoutes(r *mux.Router) {
	// Post a new message as the current user.
	r.HandleFunc("/messages/new", s.requireAuth(s.handleCreateMessage)).Methods("POST")

	// Show a single message. Existence-gated, not owner-gated.
	r.HandleFunc("/messages/{id:[0-9]+}", s.handleShowMessage).Methods("GET")

	// Delete a message. Only its owner may do this.
	r.HandleFunc("/messages/{id:[0-9]+}/delete", s.requireAuth(s.handleDeleteMessage)).Methods("POST")
}

// handleCreateMessage handles the route "POST /messages/new".
// On success it redirects instead of rendering, to signal the state change.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	message := domain.Message{
		Text:   r.PostFormValue("text"),
		UserID: user.ID,
	}
	if err := s.ms.Create(r.Context(), &message); err != nil {
		switch errs.ErrorCode(err) {
		case errs.EINVALID:
			s.flashAndRedirect(w, r, errs.ErrorMessage(err), "/")
		default:
			errs.ReturnError(w, r, err)
		}
		return
	}
	monitoring.MessagesPosted.Inc()
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// handleShowMessage handles the route "GET /messages/{id}".
// A missing message is a plain 404, for anonymous and signed-in users alike.
func (s *Server) handleShowMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	message, err := s.ms.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	likes, err := s.ls.CountByMessageID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.render(w, r, "message", map[string]interface{}{
		"Message":   message,
		"LikeCount": likes,
	})
}

// handleDeleteMessage handles the route "POST /messages/{id}/delete".
// A non-owner is denied through the regular unauthorized path and the row
// stays untouched.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid ID format."))
		return
	}
	message, err := s.ms.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := getUser(r.Context())
	if message.UserID != user.ID {
		s.unauthorized(w, r)
		return
	}
	if err := s.ms.Delete(r.Context(), message); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}
