package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/devskill-org/sunclock/config"
	"github.com/devskill-org/sunclock/metrics"
	"github.com/devskill-org/sunclock/plc"
	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
	"github.com/devskill-org/sunclock/store"
	"github.com/devskill-org/sunclock/watch"
	"github.com/devskill-org/sunclock/web"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type command struct {
	summary string
	flags   func(fs *pflag.FlagSet) any
	run     func(ctx context.Context, cfg *config.Config, opts any, stdout io.Writer) error
}

var commandOrder = []string{"report", "poll", "wait", "serve"}

var commands = map[string]command{
	"report": {
		summary: "Produce a full set of sunrise, sunset and twilight times for the given date and location",
		flags:   reportFlags,
		run:     runReport,
	},
	"poll": {
		summary: "Display the position of the Sun at the current time",
		flags:   pollFlags,
		run:     runPoll,
	},
	"wait": {
		summary: "Sleep until an event, optionally offset, then exit",
		flags:   waitFlags,
		run:     runWait,
	},
	"serve": {
		summary: "Serve reports over HTTP and stream the position of the Sun over a websocket",
		flags:   func(*pflag.FlagSet) any { return nil },
		run:     runServe,
	},
}

type reportOptions struct {
	json bool
}

func reportFlags(fs *pflag.FlagSet) any {
	opts := &reportOptions{}
	fs.BoolVar(&opts.json, "json", false, "output machine-readable JSON instead of text")
	return opts
}

func runReport(_ context.Context, cfg *config.Config, o any, stdout io.Writer) error {
	opts := o.(*reportOptions)
	r := report.New(solar.New(cfg.ReportInstant(time.Now()), cfg.Coordinates))
	if opts.json {
		buf, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintf(stdout, "%s\n", buf)
		return err
	}
	_, err := fmt.Fprintln(stdout, r.String())
	return err
}

type pollOptions struct {
	watch bool
	json  bool
}

func pollFlags(fs *pflag.FlagSet) any {
	opts := &pollOptions{}
	fs.BoolVar(&opts.watch, "watch", false, "keep running and refresh the values every poll interval")
	fs.BoolVar(&opts.json, "json", false, "output machine-readable JSON instead of text")
	return opts
}

func runPoll(ctx context.Context, cfg *config.Config, o any, stdout io.Writer) error {
	opts := o.(*pollOptions)
	terminal := watch.NewTerminal(stdout, opts.json, opts.watch)
	defer terminal.Close()

	calcs := solar.New(cfg.Now(), cfg.Coordinates)
	if !opts.watch {
		return watch.NewPoller(calcs, cfg.Poll.Interval, []watch.Sink{terminal}).Once(ctx)
	}

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	poller := watch.NewPoller(calcs, cfg.Poll.Interval, append([]watch.Sink{terminal}, sinks...),
		watch.WithClock(cfg.Now))
	return poller.Run(ctx)
}

type waitOptions struct {
	event    string
	altitude string
	offset   time.Duration
}

func waitFlags(fs *pflag.FlagSet) any {
	opts := &waitOptions{}
	fs.StringVarP(&opts.event, "event", "e", "", "event to wait for, e.g. sunrise, civil_dusk, solar_noon or custom_am")
	fs.StringVarP(&opts.altitude, "altitude", "a", "", "degrees below the horizon for custom_am and custom_pm")
	fs.DurationVar(&opts.offset, "offset", 0, "shift the event by this duration, e.g. -30m or 1h15m")
	return opts
}

func runWait(ctx context.Context, cfg *config.Config, o any, stdout io.Writer) error {
	opts := o.(*waitOptions)
	event, err := waitEvent(opts)
	if err != nil {
		return err
	}
	calcs := solar.New(cfg.Now(), cfg.Coordinates)
	target, err := watch.NewWaiter().WaitUntil(ctx, event, calcs, opts.offset)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s at %s\n", opts.event, target.Format(report.TimeLayout))
	return err
}

func waitEvent(opts *waitOptions) (solar.Event, error) {
	if opts.event == "" {
		return nil, fmt.Errorf("--event is required")
	}
	name, err := solar.ParseEventName(opts.event)
	if err != nil {
		return nil, err
	}
	if !name.IsCustom() {
		if opts.altitude != "" {
			return nil, fmt.Errorf("--altitude only applies to custom_am and custom_pm")
		}
		return solar.EventFor(name)
	}
	if opts.altitude == "" {
		return nil, fmt.Errorf("--altitude is required for %s", name)
	}
	alt, err := solar.ParseAltitude(opts.altitude)
	if err != nil {
		return nil, err
	}
	return solar.CustomEvent(name, alt)
}

func runServe(ctx context.Context, cfg *config.Config, _ any, _ io.Writer) error {
	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	calcs := solar.New(cfg.Now(), cfg.Coordinates)
	exporter := metrics.NewExporter()
	var server *web.Server
	toServer := watch.SinkFunc(func(ctx context.Context, r *report.PollReport) error {
		return server.Publish(ctx, r)
	})
	poller := watch.NewPoller(calcs, cfg.Poll.Interval, append([]watch.Sink{toServer, exporter}, sinks...),
		watch.WithClock(cfg.Now))
	server = web.NewServer(ctx, poller, cfg.Zone, cfg.Web.Port)
	server.Handle("/metrics", exporter.Handler())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(ctx) })
	g.Go(func() error { return server.Run(ctx) })
	return g.Wait()
}

// openSinks connects the optional recorder and Modbus output.
func openSinks(ctx context.Context, cfg *config.Config) ([]watch.Sink, func(), error) {
	logger := ctxlog.Logger(ctx)
	var sinks []watch.Sink
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close sink", "error", err)
			}
		}
	}

	if cfg.Store.Postgres != "" {
		db, err := store.Open(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		rec := store.NewRecorder(db, cfg.Store.DeviceID, cfg.Store.Interval)
		if err := rec.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, rec)
		logger.Info("recording samples", "interval", cfg.Store.Interval)
	}

	if cfg.PLC.Address != "" {
		out, err := plc.Dial(cfg.PLC.Address, byte(cfg.PLC.SlaveID), uint16(cfg.PLC.Register), cfg.PLC.Timeout)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, out.Close)
		sinks = append(sinks, out)
		logger.Info("writing modbus registers", "address", cfg.PLC.Address, "register", cfg.PLC.Register)
	}
	return sinks, closeAll, nil
}
