package handler

import (
	"net/http"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// itemRequest is the request body for creating or updating a journal item.
// Kind is required on create and ignored on update (the stored kind wins).
type itemRequest struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreateItem handles POST /trips/{tripID}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	var body itemRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	created, err := s.items.Create(r.Context(), user.ID, domain.Item{
		TripID: tripID,
		Kind:   domain.ItemKind(body.Kind),
		Title:  body.Title,
		Body:   body.Body,
	})
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListItems handles GET /trips/{tripID}/items?kind=entry|expense|song.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	kind := domain.ItemKind(r.URL.Query().Get("kind"))
	items, err := s.items.ListByTripID(r.Context(), user.ID, tripID, kind)
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": items})
}

// GetItem handles GET /trips/{tripID}/items/{itemID}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, itemID, err := tripChildIDs(r, "itemID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	item, err := s.items.GetByID(r.Context(), user.ID, tripID, itemID)
	if err != nil {
		respondServiceError(w, err, "item not found")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /trips/{tripID}/items/{itemID}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, itemID, err := tripChildIDs(r, "itemID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	var body itemRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	updated, err := s.items.Update(r.Context(), user.ID, domain.Item{
		ID:     itemID,
		TripID: tripID,
		Title:  body.Title,
		Body:   body.Body,
	})
	if err != nil {
		respondServiceError(w, err, "item not found")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /trips/{tripID}/items/{itemID}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, itemID, err := tripChildIDs(r, "itemID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	if err := s.items.Delete(r.Context(), user.ID, tripID, itemID); err != nil {
		respondServiceError(w, err, "item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
