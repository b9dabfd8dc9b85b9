// clock2po derives Pocket Operator sync clicks from an external MIDI clock.
// It adopts the first active clock source, emits one click per N clock
// events while the transport runs, and hot-plugs MIDI inputs as they appear.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aerialviews007/riglet/audio"
	"github.com/aerialviews007/riglet/clock"
	"github.com/aerialviews007/riglet/config"
	"github.com/aerialviews007/riglet/midi"
)

func main() {
	configPath := flag.String("config", "", "path to config.json")
	debug := flag.Bool("debug", false, "verbose, human-readable logging")
	flag.Parse()

	log := newLogger(*debug)
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	// The audio device is the one resource we cannot run without; scanning
	// for MIDI only starts once it is open and primed.
	sink, err := audio.Open(cfg.Audio, log.Named("audio"))
	if err != nil {
		log.Fatal("audio device open failed", zap.Error(err))
	}

	scanner, err := midi.NewScanner(cfg.Clock.IgnorePorts)
	if err != nil {
		log.Fatal("bad ignore patterns", zap.Error(err))
	}

	state := clock.NewState(cfg.Clock.ClocksPerPulse, log.Named("clock"))
	engine := clock.NewEngine(scanner, sink, state, cfg.Clock.ScanInterval(), log.Named("clock"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("clock2po running",
		zap.Int("clocksPerPulse", cfg.Clock.ClocksPerPulse),
		zap.Duration("scanInterval", cfg.Clock.ScanInterval()),
	)
	engine.Run(ctx)

	sink.Close()
	midi.CloseDriver()
	log.Info("exiting")
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}
