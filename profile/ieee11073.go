package profile

import "math"

// float16 converts a 16-bit IEEE-11073 SFLOAT (12-bit mantissa, 4-bit
// exponent) to its IEEE-754 equivalent, including the five reserved
// mantissa values (+INFINITY, NaN, NaN (not-at-this-resolution), NaN
// (reserved), -INFINITY) the 11073 spec carves out of the top of the
// mantissa range.
func float16(raw uint16) float64 {
	mantissa := int32(raw & 0x0FFF)
	exponent := int32(raw >> 12)
	if exponent >= 0x08 {
		exponent -= 0x10
	}

	const firstReserved = 0x07FE
	if mantissa >= firstReserved && mantissa <= 0x0802 {
		return sfloatReserved[mantissa-firstReserved]
	}
	if mantissa >= 0x0800 {
		mantissa -= 0x1000
	}
	return float64(mantissa) * math.Pow(10, float64(exponent))
}

// float32IEEE converts a 32-bit IEEE-11073 FLOAT (24-bit mantissa, 8-bit
// exponent) to its IEEE-754 equivalent.
func float32IEEE(raw uint32) float64 {
	mantissa := int32(raw & 0xFFFFFF)
	exponent := int32(int8(raw >> 24))

	const firstReserved = 0x007FFFFE
	if mantissa >= firstReserved && mantissa <= 0x00800002 {
		return floatReserved[mantissa-firstReserved]
	}
	if mantissa >= 0x800000 {
		mantissa -= 0x1000000
	}
	return float64(mantissa) * math.Pow(10, float64(exponent))
}

var sfloatReserved = [5]float64{
	math.Inf(1), math.NaN(), math.NaN(), math.NaN(), math.Inf(-1),
}

var floatReserved = [5]float64{
	math.Inf(1), math.NaN(), math.NaN(), math.NaN(), math.Inf(-1),
}
