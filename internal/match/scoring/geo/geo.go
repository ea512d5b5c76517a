// Package geo provides the default distance policy over Indian postal
// pincodes.
//
// Pincodes encode location hierarchically: the first digit is the postal
// zone, the first three digits the sorting district, and all six the
// delivery office. Shared-prefix length is therefore a cheap, deterministic
// proximity proxy that needs no geocoding data. Deployments with real
// coordinates can swap in their own scoring.DistancePolicy.
package geo

import "strings"

// Proximity sub-scores by shared pincode prefix length.
const (
	ProximitySameOffice   = 100 // identical pincode
	ProximitySameLocality = 90  // 5 shared digits
	ProximitySameDistrict = 75  // 3-4 shared digits
	ProximitySameRegion   = 55  // 2 shared digits
	ProximitySameZone     = 35  // 1 shared digit
	ProximityFar          = 10  // different zone
)

// PincodePolicy scores proximity by shared pincode prefix.
type PincodePolicy struct{}

// NewPincodePolicy constructs the default policy.
func NewPincodePolicy() *PincodePolicy {
	return &PincodePolicy{}
}

// Proximity returns a [0,100] sub-score for two location codes.
// Codes are compared case-insensitively after trimming.
func (*PincodePolicy) Proximity(a, b string) int {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))

	if a == b {
		return ProximitySameOffice
	}

	switch shared := sharedPrefixLen(a, b); {
	case shared >= 5:
		return ProximitySameLocality
	case shared >= 3:
		return ProximitySameDistrict
	case shared == 2:
		return ProximitySameRegion
	case shared == 1:
		return ProximitySameZone
	}
	return ProximityFar
}

func sharedPrefixLen(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for i := 0; i < max; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return max
}
