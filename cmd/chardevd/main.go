// cmd/chardevd/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/chardev/internal/config"
	"github.com/tamzrod/chardev/internal/device"
	"github.com/tamzrod/chardev/internal/discovery"
	"github.com/tamzrod/chardev/internal/events"
	"github.com/tamzrod/chardev/internal/host"
	"github.com/tamzrod/chardev/internal/logging"
	"github.com/tamzrod/chardev/internal/sampler"
	"github.com/tamzrod/chardev/internal/server"
	"github.com/tamzrod/chardev/internal/writer"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: chardevd <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger := logging.New(cfg.Logging, version)
	os.Exit(run(cfg, logger))
}

// run owns every deferred teardown; it returns instead of exiting so the
// offline status, the status block and the module unload always happen.
func run(cfg *config.Config, logger zerolog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Event publisher (optional)
	// --------------------

	var observer device.Observer
	if cfg.Events.Enabled {
		pub, err := events.Connect(cfg.Events, cfg.Device.Name, logging.Component(logger, "events"))
		if err != nil {
			logger.Error().Err(err).Str("broker", cfg.Events.Broker).Msg("event publisher failed")
			return 1
		}
		defer pub.Close()
		observer = pub
	}

	// --------------------
	// Device + registration
	// --------------------

	reversal, err := device.ParseReversal(cfg.Device.Reversal)
	if err != nil {
		logger.Error().Err(err).Msg("invalid reversal mode")
		return 1
	}

	ep, err := device.New(device.Options{
		Name:     cfg.Device.Name,
		Capacity: cfg.Device.Capacity,
		Reversal: reversal,
		Logger:   logging.Component(logger, "device"),
		Observer: observer,
	})
	if err != nil {
		logger.Error().Err(err).Msg("device create failed")
		return 1
	}

	table := host.NewTable(cfg.Host.FirstMajor)
	loader := host.NewLoader(logging.Component(logger, "host"))

	var mods []host.Module
	if cfg.Host.Hello {
		mods = append(mods, host.NewHello(logging.Component(logger, "host")))
	}
	mods = append(mods, host.NewCharDevice(table, ep, cfg.Device.Name, cfg.Device.Class, logging.Component(logger, "host")))

	if err := loader.Load(mods...); err != nil {
		logger.Error().Err(err).Msg("module load failed")
		return 1
	}
	defer loader.Unload()

	// --------------------
	// Client transport
	// --------------------

	srv := server.New(server.Config{
		Listen:         cfg.Server.Listen,
		APISecret:      cfg.Server.APISecret,
		MaxMessageSize: cfg.Server.MaxMessageSize,
	}, table, logging.Component(logger, "server"))

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("server start failed")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("server shutdown error")
		}
	}()

	if cfg.Discovery.Enabled {
		adv := discovery.NewAdvertiser(logging.Component(logger, "discovery"))
		err := adv.Start(discovery.Service{
			Instance: cfg.Discovery.Instance,
			Domain:   cfg.Discovery.Domain,
			Port:     srv.Port(),
			Node:     cfg.Device.Name,
			Version:  version,
		})
		if err != nil {
			// Discovery is optional; clients can still connect directly.
			logger.Warn().Err(err).Msg("mDNS registration failed")
		} else {
			defer adv.Shutdown()
		}
	}

	// --------------------
	// Status mirror (optional)
	// --------------------

	var mirrorDone chan struct{}
	if cfg.Status.Enabled {
		sw, closeWriter, err := writer.Build(cfg.Status)
		if err != nil {
			logger.Error().Err(err).Msg("status writer build failed")
			return 1
		}
		defer closeWriter()

		smp, err := sampler.New(sampler.Config{
			Device:     cfg.Device.Name,
			Interval:   time.Duration(cfg.Status.IntervalMs) * time.Millisecond,
			StaleAfter: time.Duration(cfg.Status.StaleAfterMs) * time.Millisecond,
		}, ep)
		if err != nil {
			logger.Error().Err(err).Msg("sampler build failed")
			return 1
		}

		out := make(chan sampler.Sample)
		mirrorDone = make(chan struct{})
		go func() {
			runMirror(ctx, out, sw, logging.Component(logger, "status"))
			close(mirrorDone)
		}()
		go smp.Run(ctx, out)
	}

	logger.Info().Str("node", cfg.Device.Name).Str("listen", srv.Addr()).Msg("chardevd started")

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	if mirrorDone != nil {
		<-mirrorDone
	}
	return 0
}
