// Package daemon assembles the print-head firmware from configuration:
// link, dispatcher, telemetry and metrics.
package daemon

import (
	"context"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smalldrop/phead.go/pkg/config"
	fx "github.com/smalldrop/phead.go/pkg/framework"
	"github.com/smalldrop/phead.go/pkg/l0/comm"
	"github.com/smalldrop/phead.go/pkg/metrics"
	"github.com/smalldrop/phead.go/pkg/phead"
	"github.com/smalldrop/phead.go/pkg/telemetry/mqtt"
	"github.com/smalldrop/phead.go/pkg/transport"
)

// Daemon is a configured print head.
type Daemon struct {
	Config     *config.Config
	State      *phead.State
	Dispatcher *phead.Dispatcher
	Registry   *prometheus.Registry
	Metrics    *metrics.DeviceMetrics
	Publisher  *mqtt.Publisher

	// OpenLink opens the link stream, transport.Open by default.
	OpenLink func(url string) (io.ReadWriteCloser, error)
}

// New creates a Daemon. The actuator may be nil.
func New(cfg *config.Config, act phead.Actuator) (*Daemon, error) {
	profile, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	d := &Daemon{
		Config:   cfg,
		State:    phead.NewState(profile),
		Registry: metrics.NewRegistry(),
		OpenLink: transport.Open,
	}
	d.Dispatcher = phead.NewDispatcher(d.State, act)
	d.Metrics = metrics.NewDeviceMetrics(d.Registry)
	d.Dispatcher.Observer = d.Metrics
	if cfg.Telemetry.Enable {
		if d.Publisher, err = mqtt.NewPublisher(cfg.Telemetry.URL, cfg.Device.ID, d.State); err != nil {
			return nil, err
		}
		d.Publisher.Interval = cfg.Telemetry.Interval
	}
	return d, nil
}

// Runnables lists what Run starts.
func (d *Daemon) Runnables() []fx.Runnable {
	runners := []fx.Runnable{fx.NamedRun("link", fx.RunFunc(d.runLink))}
	if d.Publisher != nil {
		runners = append(runners, d.Publisher)
	}
	if d.Config.Metrics.Addr != "" {
		runners = append(runners, fx.NamedRun("metrics", fx.RunFunc(d.serveMetrics)))
	}
	return runners
}

// Run runs everything until ctx is done or any part fails.
func (d *Daemon) Run(ctx context.Context) error {
	return fx.NewRunnerWith(ctx).Go(d.Runnables()...).Wait()
}

// Serve handles commands from stream until ctx is done or stream fails.
// stream is closed on return.
func (d *Daemon) Serve(ctx context.Context, stream io.ReadWriteCloser) error {
	fifo := comm.NewFIFO(stream, d.Dispatcher)
	fifo.PingTimeout = d.Config.Link.PingTimeout
	fifo.Observer = d.Metrics
	notifiers := comm.StateNotifiers{d.Metrics}
	if d.Publisher != nil {
		notifiers = append(notifiers, d.Publisher)
	}
	fifo.Notifier = notifiers
	d.Dispatcher.Pings = fifo
	return fx.RunWithContextCloser(ctx, stream, func() error {
		return fifo.Run(ctx)
	})
}

func (d *Daemon) runLink(ctx context.Context) error {
	stream, err := d.OpenLink(d.Config.Link.URL)
	if err != nil {
		return err
	}
	glog.Infof("%s %s serving on %s", d.Config.Device.Model, d.Config.Device.ID, d.Config.Link.URL)
	return d.Serve(ctx, stream)
}

func (d *Daemon) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(d.Config.Metrics.Path, metrics.Handler(d.Registry))
	srv := &http.Server{Addr: d.Config.Metrics.Addr, Handler: mux}
	glog.Infof("metrics on %s%s", d.Config.Metrics.Addr, d.Config.Metrics.Path)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
