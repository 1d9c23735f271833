package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/bgxboard/internal/app"
	"github.com/okian/bgxboard/internal/domain/device"
	"github.com/okian/bgxboard/internal/domain/model"
)

const maxVisitBodyBytes = 4 << 10

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// VisitDependencies defines the interface for visit tracking.
type VisitDependencies interface {
	Track(ctx context.Context, req service.TrackRequest) (service.TrackOutcome, error)
}

// VisitsHandler handles visit tracking requests.
type VisitsHandler struct {
	deps VisitDependencies
}

// NewVisitsHandler creates a new visits handler.
func NewVisitsHandler(deps VisitDependencies) *VisitsHandler {
	return &VisitsHandler{deps: deps}
}

// visitRequest mirrors the OpenAPI schema for POST /api/visits.
type visitRequest struct {
	Page       string `json:"page" validate:"required,oneof=home stats"`
	Category   string `json:"category" validate:"omitempty,max=64"`
	DeviceType string `json:"device_type" validate:"omitempty,oneof=mobile desktop unknown"`
	VisitID    string `json:"visit_id" validate:"omitempty,max=128"`
}

func (v visitRequest) validate() error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostVisit handles POST /api/visits requests. Without a device_type
// the device is classified from the User-Agent header.
func (h *VisitsHandler) HandlePostVisit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_visit"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req visitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVisitBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req.Page = strings.ToLower(strings.TrimSpace(req.Page))
	req.DeviceType = strings.ToLower(strings.TrimSpace(req.DeviceType))
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	dt := model.DeviceType(req.DeviceType)
	if dt == "" {
		dt = device.Classify(r.UserAgent())
	}

	outcome, err := h.deps.Track(r.Context(), service.TrackRequest{
		Page:       req.Page,
		Category:   strings.TrimSpace(req.Category),
		DeviceType: dt,
		VisitID:    strings.TrimSpace(req.VisitID),
	})
	if err != nil {
		status, code, err := classify(op, err)
		writeError(w, status, code, err)
		return
	}

	switch outcome {
	case service.TrackDuplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	case service.TrackDropped:
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	}
}
