// Package models defines the medical profile records evaluated by the
// matching engine.
//
// Donor and Patient are immutable after construction: constructors validate
// every field constraint and reject bad input with a validation error citing
// the offending field, so downstream scoring never re-checks.
package models

import (
	"regexp"

	dErrors "renalmatch/pkg/domain-errors"
	pstrings "renalmatch/pkg/platform/strings"
)

const (
	// MaxAge bounds plausible human age on submission.
	MaxAge = 120

	// MaxKidneySizeMM bounds the kidney measurement (length proxy, mm).
	MaxKidneySizeMM = 400

	// MaxPincodeLen bounds the opaque location code.
	MaxPincodeLen = 16

	// MaxHLATokenLen bounds a single antigen identifier.
	MaxHLATokenLen = 8
)

// hlaTokenPattern matches normalized antigen identifiers such as A1, B8, DR4.
var hlaTokenPattern = regexp.MustCompile(`^[A-Z]+[0-9]+$`)

// Donor is one side of a matching session.
type Donor struct {
	Age          int        `json:"age"`
	HLA          []string   `json:"hla"`
	BloodGroup   BloodGroup `json:"blood_group"`
	KidneySizeMM int        `json:"kidney_size_mm"`
	Pincode      string     `json:"pincode"`
}

// Patient is the recipient side. PRA (panel-reactive antibody, percent) marks
// how sensitized the patient is: higher values tolerate fewer HLA mismatches.
type Patient struct {
	Age          int        `json:"age"`
	HLA          []string   `json:"hla"`
	BloodGroup   BloodGroup `json:"blood_group"`
	KidneySizeMM int        `json:"kidney_size_mm"`
	PRA          int        `json:"pra"`
	Pincode      string     `json:"pincode"`
}

// NewDonor validates all donor field constraints and returns an immutable
// record. The HLA list is normalized (trimmed, uppercased, deduplicated).
func NewDonor(age int, hla []string, bloodGroup string, kidneySizeMM int, pincode string) (*Donor, error) {
	if err := validateAge(age); err != nil {
		return nil, err
	}
	normalizedHLA, err := normalizeHLA(hla)
	if err != nil {
		return nil, err
	}
	group, err := ParseBloodGroup(bloodGroup)
	if err != nil {
		return nil, err
	}
	if err := validateKidneySize(kidneySizeMM); err != nil {
		return nil, err
	}
	if err := validatePincode(pincode); err != nil {
		return nil, err
	}

	return &Donor{
		Age:          age,
		HLA:          normalizedHLA,
		BloodGroup:   group,
		KidneySizeMM: kidneySizeMM,
		Pincode:      pincode,
	}, nil
}

// NewPatient validates all patient field constraints, including PRA.
func NewPatient(age int, hla []string, bloodGroup string, kidneySizeMM, pra int, pincode string) (*Patient, error) {
	donor, err := NewDonor(age, hla, bloodGroup, kidneySizeMM, pincode)
	if err != nil {
		return nil, err
	}
	if pra < 0 || pra > 100 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "pra must be between 0 and 100, got %d", pra)
	}

	return &Patient{
		Age:          donor.Age,
		HLA:          donor.HLA,
		BloodGroup:   donor.BloodGroup,
		KidneySizeMM: donor.KidneySizeMM,
		PRA:          pra,
		Pincode:      donor.Pincode,
	}, nil
}

// HLASet returns the antigen list as a set for mismatch counting.
func (d *Donor) HLASet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.HLA))
	for _, antigen := range d.HLA {
		set[antigen] = struct{}{}
	}
	return set
}

func validateAge(age int) error {
	if age <= 0 || age > MaxAge {
		return dErrors.Newf(dErrors.CodeValidation, "age must be between 1 and %d, got %d", MaxAge, age)
	}
	return nil
}

func normalizeHLA(hla []string) ([]string, error) {
	normalized := pstrings.DedupeAndTrimUpper(hla)
	if len(normalized) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "hla must contain at least one antigen")
	}
	for _, token := range normalized {
		if len(token) > MaxHLATokenLen || !hlaTokenPattern.MatchString(token) {
			return nil, dErrors.Newf(dErrors.CodeValidation, "hla antigen %q is malformed", token)
		}
	}
	return normalized, nil
}

func validateKidneySize(sizeMM int) error {
	if sizeMM <= 0 || sizeMM > MaxKidneySizeMM {
		return dErrors.Newf(dErrors.CodeValidation, "kidneySize must be between 1 and %d, got %d", MaxKidneySizeMM, sizeMM)
	}
	return nil
}

func validatePincode(pincode string) error {
	if pincode == "" {
		return dErrors.New(dErrors.CodeValidation, "locationCode cannot be empty")
	}
	if len(pincode) > MaxPincodeLen {
		return dErrors.Newf(dErrors.CodeValidation, "locationCode exceeds %d characters", MaxPincodeLen)
	}
	return nil
}
