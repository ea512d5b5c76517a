package models

import (
	"strings"

	dErrors "renalmatch/pkg/domain-errors"
)

// BloodGroup is the ABO group of a donor or patient. The Rh sign is accepted
// on input and discarded: ABO is what gates transplant compatibility here.
type BloodGroup string

const (
	BloodGroupO  BloodGroup = "O"
	BloodGroupA  BloodGroup = "A"
	BloodGroupB  BloodGroup = "B"
	BloodGroupAB BloodGroup = "AB"
)

// ParseBloodGroup creates a BloodGroup from a string, validating it.
// Input is case-insensitive and may carry a trailing Rh sign ("O+", "ab-").
func ParseBloodGroup(s string) (BloodGroup, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.TrimRight(normalized, "+-")
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeValidation, "bloodGroup cannot be empty")
	}

	g := BloodGroup(normalized)
	if !g.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "bloodGroup must be one of O, A, B, AB, got %q", s)
	}
	return g, nil
}

// IsValid checks if the blood group is one of the supported enum values.
func (g BloodGroup) IsValid() bool {
	switch g {
	case BloodGroupO, BloodGroupA, BloodGroupB, BloodGroupAB:
		return true
	}
	return false
}

// CanDonateTo applies the standard ABO compatibility table: O donates to
// everyone, AB receives from everyone, A and B are cross-incompatible.
func (g BloodGroup) CanDonateTo(recipient BloodGroup) bool {
	switch g {
	case BloodGroupO:
		return true
	case BloodGroupA:
		return recipient == BloodGroupA || recipient == BloodGroupAB
	case BloodGroupB:
		return recipient == BloodGroupB || recipient == BloodGroupAB
	case BloodGroupAB:
		return recipient == BloodGroupAB
	}
	return false
}

// String returns the string representation.
func (g BloodGroup) String() string {
	return string(g)
}
