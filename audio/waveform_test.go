package audio_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/aerialviews007/riglet/audio"
	"github.com/aerialviews007/riglet/config"
)

func waveformCfg() config.AudioConfig {
	cfg := config.DefaultConfig().Audio
	return cfg
}

// frames decodes an interleaved S16LE stereo buffer into (left, right) pairs.
func frames(t *testing.T, buf []byte) [][2]int16 {
	t.Helper()
	if len(buf)%4 != 0 {
		t.Fatalf("buffer length %d is not whole stereo frames", len(buf))
	}
	out := make([][2]int16, 0, len(buf)/4)
	for i := 0; i < len(buf); i += 4 {
		out = append(out, [2]int16{
			int16(binary.LittleEndian.Uint16(buf[i:])),
			int16(binary.LittleEndian.Uint16(buf[i+2:])),
		})
	}
	return out
}

func TestBuildWaveformDeterministic(t *testing.T) {
	cfg := waveformCfg()
	p1, s1 := audio.BuildWaveform(cfg)
	p2, s2 := audio.BuildWaveform(cfg)

	if !bytes.Equal(p1, p2) || !bytes.Equal(s1, s2) {
		t.Fatal("identical config produced different buffers")
	}
}

func TestPulseLengthFollowsRateAndDuration(t *testing.T) {
	cfg := waveformCfg()
	cfg.SampleRate = 44100
	cfg.PulseMS = 3.0

	pulse, _ := audio.BuildWaveform(cfg)
	if got, want := len(pulse)/4, 132; got != want { // 44100 * 0.003
		t.Fatalf("pulse frames = %d, want %d", got, want)
	}
}

func TestPulseNeverEmpty(t *testing.T) {
	cfg := waveformCfg()
	cfg.PulseMS = 0

	pulse, _ := audio.BuildWaveform(cfg)
	if got := len(pulse) / 4; got != 1 {
		t.Fatalf("pulse frames = %d for zero duration, want 1", got)
	}
}

func TestGainClamped(t *testing.T) {
	cfg := waveformCfg()
	cfg.Gain = 4.2

	pulse, _ := audio.BuildWaveform(cfg)
	for _, fr := range frames(t, pulse) {
		if fr[0] != 32767 {
			t.Fatalf("left sample = %d with hot gain, want 32767", fr[0])
		}
	}

	cfg.Gain = -1
	pulse, _ = audio.BuildWaveform(cfg)
	for _, fr := range frames(t, pulse) {
		if fr[0] != 0 {
			t.Fatalf("left sample = %d with negative gain, want 0", fr[0])
		}
	}
}

func TestChannelRouting(t *testing.T) {
	cfg := waveformCfg()
	cfg.Gain = 1.0

	cfg.LeftOnly = true
	pulse, _ := audio.BuildWaveform(cfg)
	for _, fr := range frames(t, pulse) {
		if fr[0] == 0 || fr[1] != 0 {
			t.Fatalf("left-only frame = %v, want hot left and silent right", fr)
		}
	}

	cfg.LeftOnly = false
	pulse, _ = audio.BuildWaveform(cfg)
	for _, fr := range frames(t, pulse) {
		if fr[0] != fr[1] || fr[0] == 0 {
			t.Fatalf("both-channel frame = %v, want equal hot channels", fr)
		}
	}
}

func TestSilenceIsZeroed(t *testing.T) {
	_, silence := audio.BuildWaveform(waveformCfg())
	if len(silence) == 0 {
		t.Fatal("no silence buffer")
	}
	for _, fr := range frames(t, silence) {
		if fr[0] != 0 || fr[1] != 0 {
			t.Fatalf("silence frame = %v, want zeros", fr)
		}
	}
}
