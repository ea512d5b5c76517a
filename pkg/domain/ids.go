// Package domain defines typed identifiers shared across modules.
//
// IDs are UUID-backed value types so mixing up a session ID and a hospital ID
// is a compile error rather than a runtime bug.
package domain

import (
	"github.com/google/uuid"

	dErrors "renalmatch/pkg/domain-errors"
)

// SessionID identifies one matching session (one donor + one patient pair).
type SessionID uuid.UUID

// HospitalID identifies the hospital that owns a matching session.
type HospitalID uuid.UUID

// NewSessionID generates a fresh session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID parses a session ID from its string form.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseHospitalID parses a hospital ID from its string form.
func ParseHospitalID(s string) (HospitalID, error) {
	u, err := parseUUID(s, "hospital_id")
	return HospitalID(u), err
}

func (id SessionID) String() string  { return uuid.UUID(id).String() }
func (id HospitalID) String() string { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id HospitalID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText/UnmarshalText forward to uuid.UUID so IDs travel as their
// canonical string form in JSON (audit payloads, stored sessions, logs)
// rather than as raw byte arrays.

func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SessionID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

func (id HospitalID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *HospitalID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", field)
	}
	return u, nil
}
