package handler

import (
	"time"

	"renalmatch/internal/match/models"
	"renalmatch/internal/match/session"
)

// SessionResponse is the HTTP shape of a matching session. Profile contents
// are never echoed back; callers learn only which sides are present.
type SessionResponse struct {
	SessionID        string    `json:"session_id"`
	State            string    `json:"state"`
	DonorSubmitted   bool      `json:"donor_submitted"`
	PatientSubmitted bool      `json:"patient_submitted"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FromSession converts a session aggregate to an HTTP response.
func FromSession(sess *session.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:        sess.ID.String(),
		State:            string(sess.State),
		DonorSubmitted:   sess.Donor != nil,
		PatientSubmitted: sess.Patient != nil,
		UpdatedAt:        sess.UpdatedAt,
	}
}

// ResultResponse is the HTTP shape of a committed match verdict.
type ResultResponse struct {
	Score        int    `json:"score"`
	Verdict      string `json:"verdict"`
	HardExcluded bool   `json:"hard_excluded"`
}

// FromResult converts a domain result to an HTTP response.
func FromResult(result *models.Result) *ResultResponse {
	return &ResultResponse{
		Score:        result.Score,
		Verdict:      result.Verdict.String(),
		HardExcluded: result.HardExcluded,
	}
}
