package handler

import (
	"net/http"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// mediaRequest is the request body for registering a media attachment record.
// The upload itself happens elsewhere; this API records its anchor so the
// event feed can announce it.
type mediaRequest struct {
	Filename   string  `json:"filename"`
	MimeType   string  `json:"mime_type"`
	ParentKind *string `json:"parent_kind"`
	ParentID   *int64  `json:"parent_id"`
}

// CreateMedia handles POST /trips/{tripID}/media.
// The URL trip is recorded as the attachment's trip_id fallback; an explicit
// parent reference in the body takes precedence during event resolution.
func (s *Server) CreateMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	var body mediaRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	m := domain.Media{
		TripID:   &tripID,
		Filename: body.Filename,
		MimeType: body.MimeType,
		ParentID: body.ParentID,
	}
	if body.ParentKind != nil {
		k := domain.ObjectType(*body.ParentKind)
		m.ParentKind = &k
	}

	created, err := s.media.Create(r.Context(), user.ID, m)
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListMedia handles GET /trips/{tripID}/media.
func (s *Server) ListMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	media, err := s.media.ListByTripID(r.Context(), user.ID, tripID)
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": media})
}

// DeleteMedia handles DELETE /media/{mediaID}.
// Media is addressed directly because an attachment may be anchored to a
// parent object rather than a trip.
func (s *Server) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	mediaID, err := pathID(r, "mediaID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	if err := s.media.Delete(r.Context(), user.ID, mediaID); err != nil {
		respondServiceError(w, err, "media not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
