package handler

import (
	"net/http"
	"time"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// stopRequest is the request body for creating or updating a stop.
type stopRequest struct {
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	ArrivedAt  time.Time  `json:"arrived_at"`
	DepartedAt *time.Time `json:"departed_at"`
	Notes      string     `json:"notes"`
}

// CreateStop handles POST /trips/{tripID}/stops.
func (s *Server) CreateStop(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	var body stopRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	created, err := s.stops.Create(r.Context(), user.ID, domain.Stop{
		TripID:     tripID,
		Name:       body.Name,
		Location:   body.Location,
		ArrivedAt:  body.ArrivedAt,
		DepartedAt: body.DepartedAt,
		Notes:      body.Notes,
	})
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListStops handles GET /trips/{tripID}/stops.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	stops, err := s.stops.ListByTripID(r.Context(), user.ID, tripID)
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": stops})
}

// GetStop handles GET /trips/{tripID}/stops/{stopID}.
func (s *Server) GetStop(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, stopID, err := tripChildIDs(r, "stopID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	stop, err := s.stops.GetByID(r.Context(), user.ID, tripID, stopID)
	if err != nil {
		respondServiceError(w, err, "stop not found")
		return
	}

	respondJSON(w, http.StatusOK, stop)
}

// UpdateStop handles PUT /trips/{tripID}/stops/{stopID}.
func (s *Server) UpdateStop(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, stopID, err := tripChildIDs(r, "stopID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	var body stopRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	updated, err := s.stops.Update(r.Context(), user.ID, domain.Stop{
		ID:         stopID,
		TripID:     tripID,
		Name:       body.Name,
		Location:   body.Location,
		ArrivedAt:  body.ArrivedAt,
		DepartedAt: body.DepartedAt,
		Notes:      body.Notes,
	})
	if err != nil {
		respondServiceError(w, err, "stop not found")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteStop handles DELETE /trips/{tripID}/stops/{stopID}.
func (s *Server) DeleteStop(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, stopID, err := tripChildIDs(r, "stopID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	if err := s.stops.Delete(r.Context(), user.ID, tripID, stopID); err != nil {
		respondServiceError(w, err, "stop not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// tripChildIDs parses the tripID parameter plus one child id parameter.
func tripChildIDs(r *http.Request, child string) (int64, int64, error) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		return 0, 0, err
	}
	childID, err := pathID(r, child)
	if err != nil {
		return 0, 0, err
	}
	return tripID, childID, nil
}
