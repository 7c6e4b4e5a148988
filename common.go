package svo

// The cube is centered on the origin, with the origin itself in the positive
// octant of every axis. An axis value n is split into a sign bit (1 for n < 0)
// and a biased magnitude, so that -1 and 0 both land next to the octant
// boundary and every magnitude lies in [0, 2^depth).

// biasedAbs maps [-2^B, 2^B-1] onto [0, 2^B) by folding the negative half
// onto the positive one: n for n >= 0, -(n+1) otherwise.
func biasedAbs(n int32) uint32 {
	if n < 0 {
		return uint32(^n)
	}
	return uint32(n)
}

// normalizeAxis packs the sign bit above the depth magnitude bits.
// The caller must have bounds-checked n.
func normalizeAxis(n int32, depth uint) uint32 {
	u := biasedAbs(n)
	if n < 0 {
		u |= 1 << depth
	}
	return u
}

// denormalizeAxis is the inverse of normalizeAxis.
func denormalizeAxis(u uint32, depth uint) int32 {
	mag := u & (1<<depth - 1)
	if u>>depth&1 != 0 {
		return int32(^mag)
	}
	return int32(mag)
}

// inBounds reports whether all three biased magnitudes are below 2^depth.
// OR-ing same-width values never loses the highest set bit, so a single
// compare covers all axes.
func inBounds(x, y, z int32, depth uint) bool {
	return uint64(biasedAbs(x)|biasedAbs(y)|biasedAbs(z)) < uint64(1)<<depth
}
