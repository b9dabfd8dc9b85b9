// autopatch connects every real MIDI input to every real MIDI output on the
// ALSA sequencer, polling for hot-plugged devices. It runs next to clock2po
// but shares nothing with it except the ignore list.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aerialviews007/riglet/config"
	"github.com/aerialviews007/riglet/midi"
	"github.com/aerialviews007/riglet/patch"
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

	filter, err := midi.NewScanner(cfg.Clock.IgnorePorts)
	if err != nil {
		log.Fatal("bad ignore patterns", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("autopatch running", zap.Duration("scanInterval", cfg.Clock.ScanInterval()))
	patch.New(filter, cfg.Clock.ScanInterval(), log.Named("patch")).Run(ctx)
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
