package scoring

import (
	dErrors "renalmatch/pkg/domain-errors"

	"renalmatch/internal/match/models"
)

// MatchThreshold is the minimum score for a Matched verdict.
const MatchThreshold = 60

// Decide applies the threshold rule to produce a verdict.
//
// A hard-excluded pair (blood-group incompatible) is never matched,
// whatever the score. The out-of-range check is defensive: the evaluator
// cannot produce such scores, so a violation here means a regression.
func Decide(score int, hardExcluded bool) (models.Verdict, error) {
	if score < 0 || score > SubScoreMax {
		return "", dErrors.Newf(dErrors.CodeInvariantViolation,
			"score %d outside [0,%d]", score, SubScoreMax)
	}

	if hardExcluded {
		return models.VerdictNotMatched, nil
	}
	if score >= MatchThreshold {
		return models.VerdictMatched, nil
	}
	return models.VerdictNotMatched, nil
}
