// Package handler exposes the matching workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "renalmatch/pkg/domain"
	dErrors "renalmatch/pkg/domain-errors"
	"renalmatch/pkg/platform/httputil"
	"renalmatch/pkg/platform/middleware/auth"

	"renalmatch/internal/match/models"
	"renalmatch/internal/match/service"
	"renalmatch/internal/match/session"
)

// Service defines the matching operations the handler depends on.
type Service interface {
	CreateSession(ctx context.Context, hospitalID id.HospitalID) (*session.Session, error)
	SubmitDonor(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID, input service.SubmitDonorInput) (*session.Session, error)
	SubmitPatient(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID, input service.SubmitPatientInput) (*session.Session, error)
	MatchNow(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) (*models.Result, error)
	ViewScore(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) (*models.Result, error)
	ResetSession(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) error
}

// Handler wires matching endpoints to the match service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a match handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts matching endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.HandleCreateSession)
	r.Put("/sessions/{sessionID}/donor", h.HandleSubmitDonor)
	r.Put("/sessions/{sessionID}/patient", h.HandleSubmitPatient)
	r.Post("/sessions/{sessionID}/match", h.HandleMatchNow)
	r.Get("/sessions/{sessionID}/score", h.HandleViewScore)
	r.Delete("/sessions/{sessionID}", h.HandleResetSession)
}

// HandleCreateSession handles POST /sessions.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.service.CreateSession(ctx, auth.GetHospitalID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromSession(sess))
}

// HandleSubmitDonor handles PUT /sessions/{sessionID}/donor.
func (h *Handler) HandleSubmitDonor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SubmitDonorRequest](w, r, h.logger)
	if !ok {
		return
	}

	sess, err := h.service.SubmitDonor(ctx, auth.GetHospitalID(ctx), sessionID, req.ToInput())
	if err != nil {
		h.logRejection(ctx, "donor submission rejected", sessionID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleSubmitPatient handles PUT /sessions/{sessionID}/patient.
func (h *Handler) HandleSubmitPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SubmitPatientRequest](w, r, h.logger)
	if !ok {
		return
	}

	sess, err := h.service.SubmitPatient(ctx, auth.GetHospitalID(ctx), sessionID, req.ToInput())
	if err != nil {
		h.logRejection(ctx, "patient submission rejected", sessionID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleMatchNow handles POST /sessions/{sessionID}/match.
func (h *Handler) HandleMatchNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	sessionID, ok := h.sessionIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.MatchNow(ctx, auth.GetHospitalID(ctx), sessionID)
	if err != nil {
		h.logRejection(ctx, "match run rejected", sessionID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "match evaluated",
		"session_id", sessionID,
		"verdict", result.Verdict,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleViewScore handles GET /sessions/{sessionID}/score.
func (h *Handler) HandleViewScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.ViewScore(ctx, auth.GetHospitalID(ctx), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleResetSession handles DELETE /sessions/{sessionID}.
func (h *Handler) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.ResetSession(ctx, auth.GetHospitalID(ctx), sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sessionIDParam(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "session id is not a valid UUID"))
		return id.SessionID{}, false
	}
	return sessionID, true
}

func (h *Handler) logRejection(ctx context.Context, msg string, sessionID id.SessionID, err error) {
	if h.logger == nil {
		return
	}
	h.logger.WarnContext(ctx, msg,
		"session_id", sessionID,
		"code", dErrors.CodeOf(err),
		"error", err,
	)
}
