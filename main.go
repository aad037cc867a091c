package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nickysemenza/gola"
	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/effect"
	"github.com/robmorgan/kinetic/engine"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/logger"
	"github.com/robmorgan/kinetic/oscinput"
	"github.com/robmorgan/kinetic/status"
	"k8s.io/utils/clock"
)

func main() {
	configPath := flag.String("config", "", "path to the kinetic config file")
	demo := flag.Bool("demo", false, "drive the light with a demo sweep instead of OSC input")
	flag.Parse()

	Run(context.Background(), *configPath, *demo)
}

// Run starts the kinetic light controller and blocks until interrupted.
func Run(ctx context.Context, configPath string, demo bool) {
	ctx, cancel := context.WithCancel(ctx)

	// initialize the logger
	logger := logger.GetProjectLogger()

	wg := sync.WaitGroup{}

	// initialize the config
	logger.Info("Initializing config...")
	cfg := config.NewKineticConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			logger.Fatalf("error loading config. err='%v'", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config. err='%v'", err)
	}
	if err := setLogLevel(cfg.LogLevel); err != nil {
		logger.Warnf("ignoring log level. err='%v'", err)
	}
	warnLevelPose(cfg)
	store := config.NewStore(cfg)

	// initialize the fixture
	logger.Info("Initializing kinetic fixture...")
	f, err := fixture.NewFromConfig(cfg)
	if err != nil {
		logger.Fatalf("error initializing fixture. err='%v'", err)
	}
	e := engine.New(f)

	// pick the input source
	var source engine.InputSource
	var ctrl status.Controller = e
	listener := oscinput.NewListener()
	if demo {
		logger.Info("Running demo sweep...")
		sweep := effect.NewSweep(clock.RealClock{}, 20*time.Second, 15, cfg.Motion.MinHeight, cfg.Motion.MaxHeight)
		source = sweep
		ctrl = demoController{Engine: e, sweep: sweep}
	} else {
		source = listener
	}
	listener.OnReset(ctrl.Reset)
	listener.OnOffset(e.SetOffset)

	if cfg.OSC.ListenAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.ListenAndServe(ctx, cfg.OSC.ListenAddr); err != nil {
				logger.Errorf("osc listener stopped. err='%v'", err)
			}
		}()
	}

	// status server for the monitor
	if cfg.Status.ListenAddr != "" {
		srv := status.New(status.Config{ListenAddr: cfg.Status.ListenAddr}, ctrl)
		e.AddListener(srv.Publish)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Start(ctx); err != nil {
				logger.Errorf("status server stopped. err='%v'", err)
			}
		}()
	}

	// run the control loop forever
	logger.Info("Processing cycles forever...")
	state := fixture.NewDMXState()
	e.ProcessForever(ctx, clock.RealClock{}, &wg, source, store, state)

	// configure DMX output
	startOutput(ctx, cfg, state, &wg)

	// reload the config on SIGHUP, shut down on CTRL+C
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-hup:
			if configPath == "" {
				logger.Warn("no config file to reload")
				continue
			}
			if err := store.Reload(configPath); err != nil {
				if errors.Is(err, config.ErrRestartRequired) {
					logger.Warnf("config not reloaded, restart kinetic to apply it. err='%v'", err)
					continue
				}
				logger.Errorf("config reload failed, keeping current config. err='%v'", err)
				continue
			}
			if err := setLogLevel(store.Get().LogLevel); err != nil {
				logger.Warnf("ignoring log level. err='%v'", err)
			}
			warnLevelPose(store.Get())
			logger.Info("config reloaded")
		case <-quit:
			logger.Println("shutting down kinetic")
			cancel()
			wg.Wait()
			return
		}
	}
}

// demoController restarts the sweep along with the engine offset.
type demoController struct {
	*engine.Engine
	sweep *effect.Sweep
}

func (c demoController) Reset() {
	c.Engine.Reset()
	c.sweep.Restart()
}

// warnLevelPose logs when the motion range keeps a level platform dark.
func warnLevelPose(cfg config.KineticConfig) {
	if cfg.LevelPoseInRange() {
		return
	}
	logger.GetProjectLogger().WithFields(map[string]interface{}{
		"min_height": cfg.Motion.MinHeight,
		"max_height": cfg.Motion.MaxHeight,
	}).Warn("motor heights are solved relative to the platform centre, a level pose will be out of range")
}

func setLogLevel(level string) error {
	if level == "" {
		return nil
	}
	return logger.SetLevel(level)
}

// startOutput connects the configured DMX driver and starts sending the DMX state to it.
func startOutput(ctx context.Context, cfg config.KineticConfig, state *fixture.DMXState, wg *sync.WaitGroup) {
	log := logger.GetProjectLogger()
	tick := time.Duration(cfg.Output.TickMS) * time.Millisecond

	var client fixture.OLAClient
	switch cfg.Output.Driver {
	case config.DriverOLA:
		log.Info("Connecting to OLA...")
		c, err := gola.New(cfg.Output.OLAAddress)
		if err != nil {
			log.Errorf("could not connect to OLA: %v", err)
			return
		}
		client = c
	case config.DriverEnttec:
		log.Info("Opening DMX USB Pro...")
		c, err := fixture.NewEnttecClient(cfg.Output.SerialDevice, cfg.Patch.Universe)
		if err != nil {
			log.Errorf("could not open dmx widget: %v", err)
			return
		}
		client = c
	default:
		log.Info("DMX output disabled")
		return
	}

	wg.Add(1)
	go fixture.SendDMXWorker(ctx, clock.RealClock{}, client, tick, state, wg)
}
