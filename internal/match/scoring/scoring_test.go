package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "renalmatch/pkg/domain-errors"

	"renalmatch/internal/match/models"
	"renalmatch/internal/match/scoring/geo"
)

// fixedDistance is a stub policy returning a constant proximity sub-score.
type fixedDistance int

func (f fixedDistance) Proximity(_, _ string) int { return int(f) }

func mustDonor(t *testing.T, hla []string, bloodGroup string, sizeMM int, pincode string) *models.Donor {
	t.Helper()
	d, err := models.NewDonor(45, hla, bloodGroup, sizeMM, pincode)
	require.NoError(t, err)
	return d
}

func mustPatient(t *testing.T, hla []string, bloodGroup string, sizeMM, pra int, pincode string) *models.Patient {
	t.Helper()
	p, err := models.NewPatient(38, hla, bloodGroup, sizeMM, pra, pincode)
	require.NoError(t, err)
	return p
}

func newEvaluator(t *testing.T, policy DistancePolicy) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(policy)
	require.NoError(t, err)
	return e
}

func TestEvaluate_PerfectPair(t *testing.T) {
	// An O donor to an AB patient with zero mismatches, matching size, and
	// zero distance must clear the match threshold.
	e := newEvaluator(t, geo.NewPincodePolicy())

	donor := mustDonor(t, []string{"A1", "B8"}, "O", 110, "560001")
	patient := mustPatient(t, []string{"A1", "B8"}, "AB", 110, 0, "560001")

	eval, err := e.Evaluate(donor, patient)
	require.NoError(t, err)
	assert.False(t, eval.HardExcluded)
	assert.Equal(t, 100, eval.Score)

	verdict, err := Decide(eval.Score, eval.HardExcluded)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictMatched, verdict)
	assert.GreaterOrEqual(t, eval.Score, MatchThreshold)
}

func TestEvaluate_BloodGroupHardExclusion(t *testing.T) {
	// An A donor to a B patient is excluded regardless of every other
	// field being perfect.
	e := newEvaluator(t, fixedDistance(100))

	donor := mustDonor(t, []string{"A1", "B8"}, "A", 110, "560001")
	patient := mustPatient(t, []string{"A1", "B8"}, "B", 110, 0, "560001")

	eval, err := e.Evaluate(donor, patient)
	require.NoError(t, err)
	assert.True(t, eval.HardExcluded)
	assert.Equal(t, 0, eval.Score)

	verdict, err := Decide(eval.Score, eval.HardExcluded)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictNotMatched, verdict)
}

func TestEvaluate_AllIncompatiblePairings(t *testing.T) {
	incompatible := []struct{ donor, patient string }{
		{"A", "B"}, {"A", "O"}, {"B", "A"}, {"B", "O"},
		{"AB", "A"}, {"AB", "B"}, {"AB", "O"},
	}
	e := newEvaluator(t, fixedDistance(100))

	for _, pair := range incompatible {
		t.Run(pair.donor+"->"+pair.patient, func(t *testing.T) {
			donor := mustDonor(t, []string{"A1"}, pair.donor, 110, "560001")
			patient := mustPatient(t, []string{"A1"}, pair.patient, 110, 0, "560001")

			eval, err := e.Evaluate(donor, patient)
			require.NoError(t, err)
			verdict, err := Decide(eval.Score, eval.HardExcluded)
			require.NoError(t, err)
			assert.Equal(t, models.VerdictNotMatched, verdict)
		})
	}
}

func TestEvaluate_ScoreAlwaysInRange(t *testing.T) {
	e := newEvaluator(t, geo.NewPincodePolicy())

	hlaSets := [][]string{
		{"A1"},
		{"A1", "B8"},
		{"A1", "B8", "DR4", "DQ2", "C7", "B44", "A24"},
	}
	sizes := []int{60, 110, 145, 400}
	pras := []int{0, 25, 50, 75, 100}
	pincodes := []string{"560001", "560002", "110001"}

	for _, donorHLA := range hlaSets {
		for _, patientHLA := range hlaSets {
			for _, size := range sizes {
				for _, pra := range pras {
					for _, pincode := range pincodes {
						donor := mustDonor(t, donorHLA, "O", 110, "560001")
						patient := mustPatient(t, patientHLA, "AB", size, pra, pincode)

						eval, err := e.Evaluate(donor, patient)
						require.NoError(t, err)
						assert.GreaterOrEqual(t, eval.Score, 0)
						assert.LessOrEqual(t, eval.Score, 100)
					}
				}
			}
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newEvaluator(t, geo.NewPincodePolicy())

	donor := mustDonor(t, []string{"A1", "B8", "DR4"}, "O", 120, "560001")
	patient := mustPatient(t, []string{"A1", "B7", "DR3"}, "A", 105, 40, "560042")

	first, err := e.Evaluate(donor, patient)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.Evaluate(donor, patient)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEvaluate_HLAMismatchMonotonicity(t *testing.T) {
	// Holding everything else fixed, more mismatches never raise the score.
	e := newEvaluator(t, fixedDistance(80))
	donor := mustDonor(t, []string{"A1"}, "O", 110, "560001")

	patientHLA := []string{"A1", "B8", "DR4", "DQ2", "C7", "B44", "A24", "B27"}
	prev := 101
	for n := 1; n <= len(patientHLA); n++ {
		patient := mustPatient(t, patientHLA[:n], "AB", 110, 30, "560001")
		eval, err := e.Evaluate(donor, patient)
		require.NoError(t, err)
		assert.LessOrEqual(t, eval.Score, prev,
			"score must not increase with %d mismatches", n-1)
		prev = eval.Score
	}
}

func TestEvaluate_PRAMonotonicity(t *testing.T) {
	e := newEvaluator(t, fixedDistance(80))
	donor := mustDonor(t, []string{"A1", "B8"}, "O", 110, "560001")

	prev := 101
	for pra := 0; pra <= 100; pra += 10 {
		patient := mustPatient(t, []string{"A1", "DR4"}, "AB", 110, pra, "560001")
		eval, err := e.Evaluate(donor, patient)
		require.NoError(t, err)
		assert.LessOrEqual(t, eval.Score, prev,
			"score must not increase as PRA rises to %d", pra)
		prev = eval.Score
	}
}

func TestEvaluate_SizeToleranceBand(t *testing.T) {
	e := newEvaluator(t, fixedDistance(100))
	donor := mustDonor(t, []string{"A1"}, "O", 100, "560001")

	t.Run("identical size scores full", func(t *testing.T) {
		patient := mustPatient(t, []string{"A1"}, "AB", 100, 0, "560001")
		eval, err := e.Evaluate(donor, patient)
		require.NoError(t, err)
		assert.Equal(t, 100, eval.SizeSubScore)
	})

	t.Run("beyond tolerance scores zero", func(t *testing.T) {
		patient := mustPatient(t, []string{"A1"}, "AB", 70, 0, "560001")
		eval, err := e.Evaluate(donor, patient)
		require.NoError(t, err)
		assert.Equal(t, 0, eval.SizeSubScore)
	})

	t.Run("within band scores between", func(t *testing.T) {
		patient := mustPatient(t, []string{"A1"}, "AB", 90, 0, "560001")
		eval, err := e.Evaluate(donor, patient)
		require.NoError(t, err)
		assert.Greater(t, eval.SizeSubScore, 0)
		assert.Less(t, eval.SizeSubScore, 100)
	})
}

func TestEvaluate_RejectsRogueDistancePolicy(t *testing.T) {
	e := newEvaluator(t, fixedDistance(150))
	donor := mustDonor(t, []string{"A1"}, "O", 110, "560001")
	patient := mustPatient(t, []string{"A1"}, "AB", 110, 0, "560001")

	_, err := e.Evaluate(donor, patient)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestNewEvaluator_RequiresPolicy(t *testing.T) {
	_, err := NewEvaluator(nil)
	require.Error(t, err)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		score        int
		hardExcluded bool
		want         models.Verdict
	}{
		{name: "at threshold matches", score: MatchThreshold, want: models.VerdictMatched},
		{name: "below threshold does not match", score: MatchThreshold - 1, want: models.VerdictNotMatched},
		{name: "perfect score matches", score: 100, want: models.VerdictMatched},
		{name: "hard exclusion beats high score", score: 100, hardExcluded: true, want: models.VerdictNotMatched},
		{name: "zero score", score: 0, want: models.VerdictNotMatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(tt.score, tt.hardExcluded)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("out-of-range score is an invariant violation", func(t *testing.T) {
		_, err := Decide(101, false)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = Decide(-1, false)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
