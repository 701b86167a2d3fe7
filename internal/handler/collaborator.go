package handler

import (
	"net/http"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// inviteRequest is the request body for inviting a collaborator.
type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListCollaborators handles GET /trips/{tripID}/collaborators.
func (s *Server) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	collabs, err := s.collabs.ListByTrip(r.Context(), user.ID, tripID)
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": collabs})
}

// InviteCollaborator handles POST /trips/{tripID}/collaborators.
func (s *Server) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	body := inviteRequest{Role: string(domain.RoleContributor)}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	collab, err := s.collabs.Invite(r.Context(), user.ID, tripID, body.Email, domain.Role(body.Role))
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusCreated, collab)
}

// RemoveCollaborator handles DELETE /trips/{tripID}/collaborators/{userID}.
func (s *Server) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, userID, err := tripChildIDs(r, "userID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	if err := s.collabs.Remove(r.Context(), user.ID, tripID, userID); err != nil {
		respondServiceError(w, err, "collaborator not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
