package common

import "strconv"

// ParseAmount interprets free-form user input as a non-negative monetary
// amount in minor units. Digit characters are kept, everything else (currency
// symbols, thousands separators, whitespace) is stripped. Empty or entirely
// non-numeric input yields 0.
func ParseAmount(s string) int64 {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		// Overflowing int64 means the input was garbage, not a price.
		return 0
	}
	return v
}
