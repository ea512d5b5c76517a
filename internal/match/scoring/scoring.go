// Package scoring implements the compatibility evaluator and the match
// decision rule.
//
// Evaluation is pure and deterministic: integer arithmetic throughout, no
// I/O, no clock, no randomness. Identical profiles always produce identical
// scores, which is what makes verdicts auditable after the fact.
package scoring

import (
	"fmt"

	dErrors "renalmatch/pkg/domain-errors"

	"renalmatch/internal/match/models"
)

// Scoring policy constants. Sub-scores are normalized to [0,100] before
// weighting; weights are integer percentages summing to 100.
const (
	// HLAMismatchPenalty is the sub-score cost per mismatched antigen.
	HLAMismatchPenalty = 15

	// PRAScaleDenominator folds patient sensitization into the HLA term:
	// the HLA sub-score is multiplied by (PRAScaleDenominator − pra) and
	// divided by PRAScaleDenominator, halving it at PRA 100.
	PRAScaleDenominator = 200

	// SizeTolerancePct is the relative size difference (percent) beyond
	// which the size sub-score reaches zero.
	SizeTolerancePct = 25

	// Sub-score weights, in percent.
	WeightHLA       = 55
	WeightSize      = 25
	WeightProximity = 20

	// SubScoreMax bounds every normalized sub-score.
	SubScoreMax = 100
)

// DistancePolicy converts two location codes into a proximity sub-score in
// [0,100]. Injected so the evaluator stays testable without geocoding data.
type DistancePolicy interface {
	Proximity(a, b string) int
}

// Evaluation is the full outcome of scoring one (donor, patient) pair.
// Sub-scores are retained for logging and handler responses.
type Evaluation struct {
	Score        int  `json:"score"`
	HardExcluded bool `json:"hard_excluded"`

	HLAMismatches     int `json:"hla_mismatches"`
	HLASubScore       int `json:"hla_sub_score"`
	SizeSubScore      int `json:"size_sub_score"`
	ProximitySubScore int `json:"proximity_sub_score"`
}

// Evaluator computes compatibility scores over donor/patient pairs.
type Evaluator struct {
	distance DistancePolicy
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(distance DistancePolicy) (*Evaluator, error) {
	if distance == nil {
		return nil, fmt.Errorf("distance policy is required")
	}
	return &Evaluator{distance: distance}, nil
}

// Evaluate scores the pair. Blood-group incompatibility short-circuits with
// a hard exclusion and score zero; remaining sub-scores are not computed.
// The only error path is a defensive check on the injected distance policy.
func (e *Evaluator) Evaluate(donor *models.Donor, patient *models.Patient) (Evaluation, error) {
	if !donor.BloodGroup.CanDonateTo(patient.BloodGroup) {
		return Evaluation{Score: 0, HardExcluded: true}, nil
	}

	mismatches := countMismatches(donor, patient)
	hla := hlaSubScore(mismatches, patient.PRA)
	size := sizeSubScore(donor.KidneySizeMM, patient.KidneySizeMM)

	proximity := e.distance.Proximity(donor.Pincode, patient.Pincode)
	if proximity < 0 || proximity > SubScoreMax {
		return Evaluation{}, dErrors.Newf(dErrors.CodeInvariantViolation,
			"distance policy returned out-of-range proximity %d", proximity)
	}

	score := (hla*WeightHLA + size*WeightSize + proximity*WeightProximity) / 100

	return Evaluation{
		Score:             score,
		HLAMismatches:     mismatches,
		HLASubScore:       hla,
		SizeSubScore:      size,
		ProximitySubScore: proximity,
	}, nil
}

// countMismatches counts patient antigens absent from the donor's set.
func countMismatches(donor *models.Donor, patient *models.Patient) int {
	donorSet := donor.HLASet()
	mismatches := 0
	for _, antigen := range patient.HLA {
		if _, ok := donorSet[antigen]; !ok {
			mismatches++
		}
	}
	return mismatches
}

// hlaSubScore maps the mismatch count onto [0,100] and scales it down by the
// patient's PRA: highly sensitized patients need near-perfect matches.
func hlaSubScore(mismatches, pra int) int {
	base := SubScoreMax - HLAMismatchPenalty*mismatches
	if base < 0 {
		base = 0
	}
	return base * (PRAScaleDenominator - pra) / PRAScaleDenominator
}

// sizeSubScore falls linearly from 100 at identical sizes to 0 at a relative
// difference of SizeTolerancePct or more.
func sizeSubScore(donorMM, patientMM int) int {
	larger, smaller := donorMM, patientMM
	if smaller > larger {
		larger, smaller = smaller, larger
	}
	diffPct := (larger - smaller) * 100 / larger
	if diffPct >= SizeTolerancePct {
		return 0
	}
	return SubScoreMax - diffPct*SubScoreMax/SizeTolerancePct
}
