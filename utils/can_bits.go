package utils

// bitMask returns bitLen low bits set. Lengths outside 1..64 give 0.
func bitMask(bitLen int) uint64 {
	switch {
	case bitLen <= 0 || bitLen > 64:
		return 0
	case bitLen == 64:
		return ^uint64(0)
	default:
		return uint64(1)<<bitLen - 1
	}
}

// getBits reads a little-endian field from the packed payload.
func getBits(payload uint64, startBit, bitLen int) uint64 {
	return (payload >> startBit) & bitMask(bitLen)
}

// setBits replaces a little-endian field in the packed payload.
func setBits(payload uint64, startBit, bitLen int, value uint64) uint64 {
	m := bitMask(bitLen)
	if m == 0 {
		return payload
	}
	payload &^= m << startBit
	return payload | (value&m)<<startBit
}

// unsignedToRawInt64 sign-extends a two's complement field when signed.
func unsignedToRawInt64(u uint64, bitLen int, signed bool) int64 {
	if !signed || bitLen <= 0 || bitLen >= 64 {
		return int64(u)
	}
	if u&(uint64(1)<<(bitLen-1)) == 0 {
		return int64(u)
	}
	return int64(u | ^bitMask(bitLen))
}

// rawToUnsigned truncates raw to a bitLen-wide two's complement field.
func rawToUnsigned(raw int64, bitLen int) uint64 {
	return uint64(raw) & bitMask(bitLen)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampRaw limits raw to what a bitLen-wide field can hold.
func clampRaw(raw int64, bitLen int, signed bool) int64 {
	if bitLen <= 0 || bitLen > 63 {
		return raw
	}
	var lo, hi int64
	if signed {
		lo = -int64(1) << (bitLen - 1)
		hi = int64(1)<<(bitLen-1) - 1
	} else {
		lo = 0
		hi = int64(1)<<bitLen - 1
	}
	if raw < lo {
		return lo
	}
	if raw > hi {
		return hi
	}
	return raw
}
