package models

// Verdict is the binary outcome of a match run.
type Verdict string

const (
	VerdictMatched    Verdict = "matched"
	VerdictNotMatched Verdict = "not_matched"
)

// IsValid checks if the verdict is one of the supported enum values.
func (v Verdict) IsValid() bool {
	return v == VerdictMatched || v == VerdictNotMatched
}

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Result pairs a score with its verdict. The two are only ever written
// together: a match run replaces the whole Result, never one half.
type Result struct {
	Score        int     `json:"score"`
	Verdict      Verdict `json:"verdict"`
	HardExcluded bool    `json:"hard_excluded"`
}
