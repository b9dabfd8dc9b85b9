package audio

import "github.com/aerialviews007/riglet/config"

// silenceFrames is the size of the silence chunk written after each pulse to
// keep the DAC primed between clicks.
const silenceFrames = 64

// BuildWaveform computes the pulse and silence buffers for the configured
// sample rate, pulse length, gain and channel routing. Buffers are interleaved
// 16-bit little-endian stereo frames. Gain is clamped so the amplitude never
// exceeds the signed sample range.
func BuildWaveform(cfg config.AudioConfig) (pulse, silence []byte) {
	frames := int(float64(cfg.SampleRate) * cfg.PulseMS / 1000.0)
	if frames < 1 {
		frames = 1
	}

	amp := int(32767 * cfg.Gain)
	if amp < 0 {
		amp = 0
	}
	if amp > 32767 {
		amp = 32767
	}

	left := uint16(amp)
	right := uint16(amp)
	if cfg.LeftOnly {
		right = 0
	}

	pulse = make([]byte, 0, frames*4)
	for i := 0; i < frames; i++ {
		pulse = append(pulse,
			byte(left), byte(left>>8),
			byte(right), byte(right>>8),
		)
	}

	silence = make([]byte, silenceFrames*4)
	return pulse, silence
}
