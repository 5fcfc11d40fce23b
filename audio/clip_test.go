package audio

import (
	"math"
	"testing"

	"github.com/jetsetilly/sci0play/test"
)

func TestClip(t *testing.T) {
	test.ExpectEquality(t, clip(0), int16(0))
	test.ExpectEquality(t, clip(knee), int16(knee))
	test.ExpectEquality(t, clip(-knee), int16(-knee))

	// all voices at full velocity
	full := int32(Voices * voiceAmplitude)
	test.ExpectSuccess(t, clip(full) > knee)
	test.ExpectSuccess(t, clip(full) < math.MaxInt16)
	test.ExpectEquality(t, clip(-full), -clip(full))

	test.ExpectSuccess(t, clip(math.MaxInt32) <= math.MaxInt16)
	test.ExpectSuccess(t, clip(math.MinInt32) >= -math.MaxInt16)

	prev := clip(0)
	for x := int32(0); x <= full; x += 64 {
		y := clip(x)
		test.ExpectSuccess(t, y >= prev)
		prev = y
	}
}
