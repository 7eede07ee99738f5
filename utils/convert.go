package utils

// BoolToFloat converts bool to float64 for signal encoding.
func BoolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// FloatToBool reads a decoded flag signal; anything above 0.5 is set.
func FloatToBool(v float64) bool {
	return v > 0.5
}

// BoolToInt converts bool to int for recorder rows and logs.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
