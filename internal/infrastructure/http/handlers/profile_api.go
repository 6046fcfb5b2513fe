package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/pkg/errors"
)

// ProfileAPIHandlers handles profile and progress requests
type ProfileAPIHandlers struct {
	base
	profiles inbound.ProfileService
}

// NewProfileAPIHandlers creates profile handlers
func NewProfileAPIHandlers(profiles inbound.ProfileService, logger *zap.Logger) *ProfileAPIHandlers {
	return &ProfileAPIHandlers{
		base:     newBase(logger.Named("profile-api")),
		profiles: profiles,
	}
}

type progressRequest struct {
	Weight float64 `json:"weight" validate:"required,gt=0,lte=500"`
}

// CreateProfile handles POST /api/v1/profiles
func (h *ProfileAPIHandlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in inbound.ProfileInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := requireMetrics(in); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.profiles.CreateProfile(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, dto, "Profile created successfully")
}

// GetProfile handles GET /api/v1/profiles/{id}
func (h *ProfileAPIHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.profiles.GetProfile(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, dto, "")
}

// UpdateProfile handles PUT /api/v1/profiles/{id}
func (h *ProfileAPIHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in inbound.ProfileInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.profiles.UpdateProfile(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, dto, "Profile updated successfully")
}

// RecordProgress handles POST /api/v1/profiles/{id}/progress
func (h *ProfileAPIHandlers) RecordProgress(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req progressRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.profiles.RecordProgress(r.Context(), inbound.RecordProgressCommand{UserID: id, Weight: req.Weight})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, dto, "Progress recorded")
}

// ProgressReport handles GET /api/v1/profiles/{id}/progress
func (h *ProfileAPIHandlers) ProgressReport(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.profiles.ProgressReport(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, report, "")
}

// requireMetrics rejects profiles without the body metrics every
// calculation depends on
func requireMetrics(in inbound.ProfileInput) error {
	var missing []errors.ValidationError
	if in.Weight <= 0 {
		missing = append(missing, errors.ValidationError{Field: "weight", Tag: "required", Message: "weight is required"})
	}
	if in.Height <= 0 {
		missing = append(missing, errors.ValidationError{Field: "height", Tag: "required", Message: "height is required"})
	}
	if in.Age <= 0 {
		missing = append(missing, errors.ValidationError{Field: "age", Tag: "required", Message: "age is required"})
	}
	if len(missing) > 0 {
		return errors.NewValidationErrors(missing)
	}
	return nil
}
