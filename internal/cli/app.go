package cli

import (
	"context"
	"io"

	"github.com/arthur-debert/busy/pkg/config"
	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/arthur-debert/busy/pkg/metrics"
	"github.com/arthur-debert/busy/pkg/ui"
	"github.com/arthur-debert/busy/pkg/wait"
	"github.com/prometheus/client_golang/prometheus"
)

// app is the composition root: one registry, shared by everything that
// starts loaders or watches them
type app struct {
	cfg       *config.Config
	format    ui.Format
	reg       *wait.Registry
	indicator *ui.Indicator
	collector *metrics.Collector
	server    *metrics.Server
}

func newApp(cfg *config.Config, format ui.Format, status io.Writer) (*app, error) {
	reg := wait.New(wait.WithLogger(logging.GetLogger("wait")))

	a := &app{
		cfg:    cfg,
		format: format,
		reg:    reg,
		indicator: ui.NewIndicator(reg, status, format, ui.IndicatorOptions{
			Text:    cfg.Spinner.Text,
			Refresh: cfg.Spinner.Refresh,
		}),
	}

	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg, promReg)
		if err != nil {
			return nil, err
		}
		a.collector = collector
		a.server = metrics.NewServer(cfg.Metrics.Addr, reg, promReg)
	}

	return a, nil
}

// start binds the metrics server and attaches observers. A bind failure is
// returned before anything is attached. The returned channel yields the
// server's exit error once ctx is done.
func (a *app) start(ctx context.Context) (<-chan error, error) {
	errCh := make(chan error, 1)
	if a.server == nil {
		close(errCh)
		a.indicator.Attach()
		return errCh, nil
	}

	ln, err := a.server.Listen()
	if err != nil {
		return nil, err
	}
	a.indicator.Attach()

	go func() {
		errCh <- a.server.ServeListener(ctx, ln)
	}()
	return errCh, nil
}

func (a *app) close() {
	a.indicator.Close()
	if a.collector != nil {
		a.collector.Close()
	}
}
