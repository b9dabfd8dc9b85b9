// Package audio owns the PCM output used for Pocket Operator sync pulses.
//
// The device is opened once at startup with bounded retries and primed with
// silence so the first click does not pop. Emit is safe for concurrent use;
// a failed write drops that pulse and keeps the device handle - re-sending a
// click out of time would be worse than skipping it.
package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/oto"
	"go.uber.org/zap"

	"github.com/aerialviews007/riglet/config"
)

// ErrDeviceUnavailable is returned by Open once the retry budget is
// exhausted. It is the only fatal error this package produces.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// primeWrites is the number of silence buffers written right after open.
const primeWrites = 8

// device is the live PCM connection. Production uses an oto player; tests
// substitute a fake through openDevice.
type device interface {
	io.Writer
	Close() error
}

// openDevice acquires the PCM output. oto plays to the system default sink,
// so a non-default cfg.Device must be routed via the ALSA configuration
// (e.g. /etc/asound.conf), same as the "default" device name suggests.
var openDevice = func(cfg config.AudioConfig) (device, func() error, error) {
	ctx, err := oto.NewContext(cfg.SampleRate, 2, 2, cfg.PeriodFrames*4)
	if err != nil {
		return nil, nil, err
	}
	return ctx.NewPlayer(), ctx.Close, nil
}

// Sink serializes all pulse writes to the audio device. The zero value is not
// usable; construct with Open.
type Sink struct {
	mu       sync.Mutex
	dev      device
	closeCtx func() error
	pulse    []byte
	silence  []byte
	log      *zap.Logger
}

// Open acquires the audio device, retrying up to cfg.OpenRetries times with
// cfg.OpenDelay between attempts. Each failed attempt is logged; only
// exhausting the budget is fatal. On success the output is primed with
// silence to avoid an audible pop on the first pulse.
func Open(cfg config.AudioConfig, log *zap.Logger) (*Sink, error) {
	pulse, silence := BuildWaveform(cfg)

	retries := cfg.OpenRetries
	if retries < 1 {
		retries = 1
	}

	var (
		dev      device
		closeCtx func() error
		err      error
	)
	for attempt := 1; attempt <= retries; attempt++ {
		dev, closeCtx, err = openDevice(cfg)
		if err == nil {
			break
		}
		log.Warn("audio open attempt failed",
			zap.String("device", cfg.Device),
			zap.Int("attempt", attempt),
			zap.Int("retries", retries),
			zap.Error(err),
		)
		if attempt < retries {
			time.Sleep(cfg.OpenDelay())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q after %d attempts: %v",
			ErrDeviceUnavailable, cfg.Device, retries, err)
	}

	s := &Sink{
		dev:      dev,
		closeCtx: closeCtx,
		pulse:    pulse,
		silence:  silence,
		log:      log,
	}

	for i := 0; i < primeWrites; i++ {
		if _, werr := s.dev.Write(s.silence); werr != nil {
			log.Warn("audio prime write failed", zap.Error(werr))
			break
		}
	}

	log.Info("audio device ready",
		zap.String("device", cfg.Device),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Float64("pulseMs", cfg.PulseMS),
		zap.Bool("leftOnly", cfg.LeftOnly),
	)
	return s, nil
}

// Emit writes one pulse followed by a silence chunk. Safe for concurrent
// callers; at most one write sequence is in flight at a time. A write error
// means the pulse is lost - the handle is kept and the next pulse is
// attempted normally.
func (s *Sink) Emit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.dev.Write(s.pulse); err != nil {
		return fmt.Errorf("pulse write: %w", err)
	}
	if _, err := s.dev.Write(s.silence); err != nil {
		return fmt.Errorf("silence write: %w", err)
	}
	return nil
}

// Close releases the device. Best effort: failures are logged and swallowed.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dev.Close(); err != nil {
		s.log.Debug("audio player close", zap.Error(err))
	}
	if s.closeCtx != nil {
		if err := s.closeCtx(); err != nil {
			s.log.Debug("audio context close", zap.Error(err))
		}
	}
}
