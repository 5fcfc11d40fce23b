package audio

// mixed values up to the knee pass through unchanged
const knee = 24576

// the range left between the knee and full scale
const headroom = 32767 - knee

// clip limits a mixed value to the 16bit sample range. values beyond the knee
// are compressed so that they approach full scale without reaching it
func clip(x int32) int16 {
	v := int64(x)
	if v >= -knee && v <= knee {
		return int16(v)
	}

	neg := v < 0
	if neg {
		v = -v
	}

	over := v - knee
	y := knee + over*headroom/(over+headroom)

	if neg {
		return int16(-y)
	}
	return int16(y)
}
