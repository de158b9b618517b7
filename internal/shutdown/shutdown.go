// Package shutdown provides a graceful-stop controller for a running
// simulation loop: SIGINT/SIGTERM plus an optional stop-file poll trigger
// registered callbacks, mirroring pkg/emergency.Controller's shape with
// zerolog replacing its direct fmt.Println console output.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Config configures a Controller.
type Config struct {
	// StopFile, if set, is polled for existence; its presence triggers stop.
	StopFile string

	// PollInterval for checking StopFile. Defaults to 1s.
	PollInterval time.Duration

	// EnableSignalHandlers enables SIGINT/SIGTERM handling.
	EnableSignalHandlers bool
}

// Controller triggers a one-shot stop from either an OS signal or a
// stop-file appearing, and runs registered callbacks exactly once.
type Controller struct {
	stopFile     string
	pollInterval time.Duration
	signals      bool

	log zerolog.Logger

	stopCh    chan struct{}
	stopped   bool
	mutex     sync.RWMutex
	callbacks []func()
}

// New builds a Controller from cfg.
func New(cfg Config, log zerolog.Logger) *Controller {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	return &Controller{
		stopFile:     cfg.StopFile,
		pollInterval: cfg.PollInterval,
		signals:      cfg.EnableSignalHandlers,
		log:          log,
		stopCh:       make(chan struct{}),
		callbacks:    make([]func(), 0),
	}
}

// Start begins watching for stop conditions until ctx is done.
func (c *Controller) Start(ctx context.Context) {
	if c.stopFile != "" {
		go c.watchStopFile(ctx)
	}
	if c.signals {
		go c.watchSignals(ctx)
	}
}

func (c *Controller) watchStopFile(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := os.Stat(c.stopFile); err == nil {
				c.log.Warn().Str("stop_file", c.stopFile).Msg("stop file detected")
				c.triggerStop("stop file detected")
				return
			}
		}
	}
}

func (c *Controller) watchSignals(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		return
	case sig := <-sigCh:
		c.log.Warn().Str("signal", sig.String()).Msg("stop signal received")
		c.triggerStop(fmt.Sprintf("signal: %v", sig))
	}
}

func (c *Controller) triggerStop(reason string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stopCh)

	c.log.Info().Str("reason", reason).Int("callbacks", len(c.callbacks)).Msg("shutdown triggered")
	for _, cb := range c.callbacks {
		cb()
	}
}

// Stop manually triggers shutdown.
func (c *Controller) Stop(reason string) {
	c.triggerStop(reason)
}

// IsStopped reports whether shutdown has been triggered.
func (c *Controller) IsStopped() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stopped
}

// StopChannel returns a channel closed once shutdown is triggered.
func (c *Controller) StopChannel() <-chan struct{} {
	return c.stopCh
}

// OnStop registers a callback run once, in registration order, when
// shutdown triggers.
func (c *Controller) OnStop(cb func()) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.callbacks = append(c.callbacks, cb)
}
