// Package session holds the matching session aggregate and its state machine.
//
// A session owns at most one donor and one patient record. Legal call
// ordering is enforced by explicit states rather than saved/loaded booleans,
// so illegal combinations ("evaluated without a patient") cannot be
// represented at all.
package session

import (
	"time"

	id "renalmatch/pkg/domain"
	dErrors "renalmatch/pkg/domain-errors"

	"renalmatch/internal/match/models"
)

// State names every legal point in the submit/evaluate lifecycle.
type State string

const (
	StateEmpty         State = "empty"
	StateDonorOnly     State = "donor_only"
	StatePatientOnly   State = "patient_only"
	StateBothSubmitted State = "both_submitted"
	StateEvaluated     State = "evaluated"
)

// IsValid checks if the state is one of the supported enum values.
func (s State) IsValid() bool {
	switch s {
	case StateEmpty, StateDonorOnly, StatePatientOnly, StateBothSubmitted, StateEvaluated:
		return true
	}
	return false
}

// Session is the aggregate root for one donor/patient pair.
//
// Invariants:
//   - State always reflects which profiles are present
//   - Result is non-nil iff State == StateEvaluated
//   - Donor and Patient are immutable once set; re-submission replaces the
//     whole record (overwrite policy) and clears any previous Result
type Session struct {
	ID         id.SessionID    `json:"id"`
	HospitalID id.HospitalID   `json:"hospital_id"`
	State      State           `json:"state"`
	Donor      *models.Donor   `json:"donor,omitempty"`
	Patient    *models.Patient `json:"patient,omitempty"`
	Result     *models.Result  `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// New creates an empty session owned by a hospital.
func New(sessionID id.SessionID, hospitalID id.HospitalID, now time.Time) *Session {
	return &Session{
		ID:         sessionID,
		HospitalID: hospitalID,
		State:      StateEmpty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ApplyDonor records a donor submission. Returns true when a prior donor was
// superseded. Re-submission after evaluation invalidates the stored result.
func (s *Session) ApplyDonor(donor *models.Donor, now time.Time) (superseded bool) {
	superseded = s.Donor != nil
	s.Donor = donor
	s.Result = nil
	s.State = s.recomputeState()
	s.UpdatedAt = now
	return superseded
}

// ApplyPatient records a patient submission, symmetric to ApplyDonor.
func (s *Session) ApplyPatient(patient *models.Patient, now time.Time) (superseded bool) {
	superseded = s.Patient != nil
	s.Patient = patient
	s.Result = nil
	s.State = s.recomputeState()
	s.UpdatedAt = now
	return superseded
}

// CanEvaluate checks whether a match run is legal from the current state.
// Use with ApplyResult so the check and the transition stay separate.
func (s *Session) CanEvaluate() error {
	switch s.State {
	case StateBothSubmitted, StateEvaluated:
		return nil
	case StateEmpty:
		return dErrors.New(dErrors.CodeIncompleteProfile, "no profiles submitted yet")
	case StateDonorOnly:
		return dErrors.New(dErrors.CodeIncompleteProfile, "patient profile not submitted yet")
	case StatePatientOnly:
		return dErrors.New(dErrors.CodeIncompleteProfile, "donor profile not submitted yet")
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "session in unknown state %q", s.State)
}

// ApplyResult commits a match outcome. Score and verdict land together or
// not at all. Call CanEvaluate first to validate the transition.
func (s *Session) ApplyResult(result models.Result, now time.Time) {
	s.Result = &result
	s.State = StateEvaluated
	s.UpdatedAt = now
}

// recomputeState derives the pre-evaluation state from which profiles exist.
func (s *Session) recomputeState() State {
	switch {
	case s.Donor != nil && s.Patient != nil:
		return StateBothSubmitted
	case s.Donor != nil:
		return StateDonorOnly
	case s.Patient != nil:
		return StatePatientOnly
	}
	return StateEmpty
}
