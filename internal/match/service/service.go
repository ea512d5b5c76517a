// Package service orchestrates the matching workflow: profile submission,
// evaluation, verdicts, and audit emission.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	id "renalmatch/pkg/domain"
	dErrors "renalmatch/pkg/domain-errors"
	"renalmatch/pkg/platform/audit"
	"renalmatch/pkg/platform/sentinel"

	"renalmatch/internal/match/metrics"
	"renalmatch/internal/match/models"
	"renalmatch/internal/match/ports"
	"renalmatch/internal/match/scoring"
	"renalmatch/internal/match/session"
)

// Type aliases for shared interfaces.
type (
	Store          = ports.SessionStore
	AuditPublisher = ports.AuditPublisher
)

// SubmitDonorInput carries raw donor fields; validation happens in the
// models constructors.
type SubmitDonorInput struct {
	Age          int
	HLA          []string
	BloodGroup   string
	KidneySizeMM int
	Pincode      string
}

// SubmitPatientInput is symmetric to SubmitDonorInput plus PRA.
type SubmitPatientInput struct {
	Age          int
	HLA          []string
	BloodGroup   string
	KidneySizeMM int
	PRA          int
	Pincode      string
}

// Service runs the single-pair matching workflow over a session store.
type Service struct {
	store          Store
	evaluator      *scoring.Evaluator
	locks          *sessionLocks
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service.
func New(store Store, evaluator *scoring.Evaluator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}

	s := &Service{
		store:     store,
		evaluator: evaluator,
		locks:     newSessionLocks(),
		tracer:    otel.Tracer("renalmatch/match"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateSession opens an empty matching session for a hospital.
func (s *Service) CreateSession(ctx context.Context, hospitalID id.HospitalID) (*session.Session, error) {
	if hospitalID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "hospital identity is required")
	}

	sess := session.New(id.NewSessionID(), hospitalID, s.now())
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "session created",
			"session_id", sess.ID,
			"hospital_id", hospitalID,
		)
	}
	return sess, nil
}

// SubmitDonor validates and records a donor profile. Re-submission follows
// the overwrite policy: the new record supersedes the old one and any prior
// verdict is invalidated.
func (s *Service) SubmitDonor(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID, input SubmitDonorInput) (*session.Session, error) {
	donor, err := models.NewDonor(input.Age, input.HLA, input.BloodGroup, input.KidneySizeMM, input.Pincode)
	if err != nil {
		s.incrementValidationFailure()
		return nil, err
	}

	release := s.locks.acquire(sessionID)
	defer release()

	sess, err := s.loadOwnedSession(ctx, hospitalID, sessionID)
	if err != nil {
		return nil, err
	}

	superseded := sess.ApplyDonor(donor, s.now())
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store donor")
	}

	if superseded && s.logger != nil {
		s.logger.InfoContext(ctx, "donor profile superseded",
			"session_id", sessionID,
		)
	}
	s.emitProfileEvent(ctx, sess, audit.EventDonorRecorded, superseded)
	s.incrementProfileSubmitted("donor")
	return sess, nil
}

// SubmitPatient validates and records a patient profile, symmetric to
// SubmitDonor.
func (s *Service) SubmitPatient(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID, input SubmitPatientInput) (*session.Session, error) {
	patient, err := models.NewPatient(input.Age, input.HLA, input.BloodGroup, input.KidneySizeMM, input.PRA, input.Pincode)
	if err != nil {
		s.incrementValidationFailure()
		return nil, err
	}

	release := s.locks.acquire(sessionID)
	defer release()

	sess, err := s.loadOwnedSession(ctx, hospitalID, sessionID)
	if err != nil {
		return nil, err
	}

	superseded := sess.ApplyPatient(patient, s.now())
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store patient")
	}

	if superseded && s.logger != nil {
		s.logger.InfoContext(ctx, "patient profile superseded",
			"session_id", sessionID,
		)
	}
	s.emitProfileEvent(ctx, sess, audit.EventPatientRecorded, superseded)
	s.incrementProfileSubmitted("patient")
	return sess, nil
}

// MatchNow evaluates the pair and commits the verdict. Legal only once both
// profiles exist; re-running against unchanged profiles is idempotent since
// evaluation is deterministic. The audit event is emitted strictly after the
// store write commits and its failure never rolls the verdict back.
func (s *Service) MatchNow(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) (*models.Result, error) {
	start := s.now()

	release := s.locks.acquire(sessionID)
	defer release()

	sess, err := s.loadOwnedSession(ctx, hospitalID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.CanEvaluate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "match.Evaluate")
	eval, err := s.evaluator.Evaluate(sess.Donor, sess.Patient)
	if err == nil {
		var verdict models.Verdict
		verdict, err = scoring.Decide(eval.Score, eval.HardExcluded)
		if err == nil {
			span.SetAttributes(
				attribute.Int("match.score", eval.Score),
				attribute.Bool("match.hard_excluded", eval.HardExcluded),
				attribute.String("match.verdict", verdict.String()),
			)
			sess.ApplyResult(models.Result{
				Score:        eval.Score,
				Verdict:      verdict,
				HardExcluded: eval.HardExcluded,
			}, s.now())
		}
	}
	span.End()
	if err != nil {
		// Invariant violations are regressions, not caller mistakes.
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "evaluation failed",
				"session_id", sessionID,
				"error", err,
			)
		}
		return nil, err
	}

	if err := s.store.Update(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verdict")
	}

	result := *sess.Result
	s.emitVerdictEvent(ctx, sess, result)
	if s.metrics != nil {
		s.metrics.ObserveMatchRun(result.Verdict.String(), result.Score, result.HardExcluded, start)
	}
	return &result, nil
}

// ViewScore returns the last committed result, or not_found when the
// session has never been evaluated (or a re-submission invalidated the
// previous verdict).
func (s *Service) ViewScore(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) (*models.Result, error) {
	sess, err := s.loadOwnedSession(ctx, hospitalID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Result == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "session has not been evaluated")
	}
	result := *sess.Result
	return &result, nil
}

// ResetSession destroys the session and both profile records.
func (s *Service) ResetSession(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) error {
	release := s.locks.acquire(sessionID)
	defer release()

	if _, err := s.loadOwnedSession(ctx, hospitalID, sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "session reset", "session_id", sessionID)
	}
	return nil
}

// loadOwnedSession fetches the session and enforces hospital ownership.
func (s *Service) loadOwnedSession(ctx context.Context, hospitalID id.HospitalID, sessionID id.SessionID) (*session.Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.HospitalID != hospitalID {
		return nil, dErrors.New(dErrors.CodeForbidden, "session belongs to another hospital")
	}
	return sess, nil
}

func (s *Service) emitProfileEvent(ctx context.Context, sess *session.Session, action audit.AuditEvent, superseded bool) {
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category:   audit.CategoryFor(action),
		Timestamp:  s.now(),
		SessionID:  sess.ID,
		HospitalID: sess.HospitalID,
		Action:     string(action),
		Superseded: superseded,
	},
		"state", string(sess.State),
		"superseded", superseded,
	)
}

func (s *Service) emitVerdictEvent(ctx context.Context, sess *session.Session, result models.Result) {
	action := audit.EventNotMatched
	if result.Verdict == models.VerdictMatched {
		action = audit.EventMatched
	}

	attrList := []any{
		"score", result.Score,
		"hard_excluded", result.HardExcluded,
	}
	if result.HardExcluded {
		attrList = append(attrList, "reason", "blood_group_incompatible")
	}

	score := result.Score
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category:     audit.CategoryFor(action),
		Timestamp:    s.now(),
		SessionID:    sess.ID,
		HospitalID:   sess.HospitalID,
		Action:       string(action),
		Score:        &score,
		HardExcluded: result.HardExcluded,
	}, attrList...)
}

func (s *Service) incrementProfileSubmitted(kind string) {
	if s.metrics != nil {
		s.metrics.IncrementProfileSubmitted(kind)
	}
}

func (s *Service) incrementValidationFailure() {
	if s.metrics != nil {
		s.metrics.IncrementValidationFailure()
	}
}
