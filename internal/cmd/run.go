package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/internal/log"
	"github.com/Alia5/kb2pad/internal/viiper"
	"github.com/Alia5/kb2pad/layout"
	"github.com/Alia5/kb2pad/macro"
	"github.com/Alia5/kb2pad/pipeline"
	"github.com/Alia5/kb2pad/realtime"
	"github.com/Alia5/kb2pad/settings"
	"github.com/Alia5/kb2pad/sink"
	"github.com/Alia5/kb2pad/sink/monitor"
)

const deviceName = "kb2pad"

// ViiperOptions configures the VIIPER network output.
type ViiperOptions struct {
	Addr        string        `help:"VIIPER API server address" default:"localhost:3242" env:"KB2PAD_VIIPER_ADDR"`
	Bus         uint32        `help:"Bus to attach the controller to; created when missing, 0 lets the server pick" default:"1" env:"KB2PAD_VIIPER_BUS"`
	Password    string        `help:"VIIPER API password" env:"KB2PAD_VIIPER_PASSWORD"`
	AskPassword bool          `help:"Prompt for the VIIPER API password on the terminal"`
	DialTimeout time.Duration `help:"Connect timeout for VIIPER requests" default:"3s" env:"KB2PAD_VIIPER_DIAL_TIMEOUT"`
}

// MonitorOptions configures the WebSocket report monitor.
type MonitorOptions struct {
	Addr string `help:"WebSocket monitor listen address; empty disables it" env:"KB2PAD_MONITOR_ADDR"`
}

// Run captures keyboard and mouse input and drives the virtual controller.
type Run struct {
	ProfileOption `embed:""`
	Devices       []string       `help:"evdev devices to capture; empty captures every keyboard and mouse" env:"KB2PAD_DEVICES"`
	Grab          bool           `help:"Grab the capture devices so other programs stop seeing their input"`
	Output        []string       `help:"Report outputs" enum:"viiper,uinput,log,none" default:"viiper" env:"KB2PAD_OUTPUT"`
	EmitUinput    bool           `help:"Replay macro and combo output to the host through uinput keyboard and mouse devices"`
	NoSave        bool           `help:"Do not write the profile back on exit"`
	Viiper        ViiperOptions  `embed:"" prefix:"viiper."`
	Monitor       MonitorOptions `embed:"" prefix:"monitor."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger)
}

// Start runs until ctx is cancelled or a component fails.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	profilePath, err := r.path()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	sinks, err := r.outputs(ctx, g, logger, rawLogger)
	if err != nil {
		return err
	}
	out := sink.Multi(sinks)
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn("failed to close outputs", "error", err)
		}
	}()

	var host macro.Emitter
	if r.EmitUinput {
		em, err := sink.NewUinputEmitter(deviceName)
		if err != nil {
			return err
		}
		defer em.Close()
		host = em
	}

	clock := input.NewClock()
	s := settings.New()
	p := pipeline.New(s, out, clock, logger, pipeline.Options{Host: host})
	ws := &workspace{settings: s, layouts: layout.NewStore(), engine: p.Engine()}
	if err := ws.load(profilePath, clock.NowMs(), logger); err != nil {
		logger.Warn("failed to load profile, using defaults", "path", profilePath, "error", err)
	}

	loop := realtime.New(ws.settings.PollingRate(), p.Tick, logger, realtime.Options{})
	if err := loop.Start(); err != nil {
		return err
	}
	defer loop.Stop()
	logger.Info("sampling loop started", "period_ms", ws.settings.PollingRateMs())

	src := input.NewEvdevSource(r.Devices, r.Grab, clock, logger)
	g.Go(func() error {
		if err := src.Run(ctx, p); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("input capture: %w", err)
		}
		return nil
	})

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				logger.Info("reloading profile", "path", profilePath)
				if err := ws.load(profilePath, clock.NowMs(), logger); err != nil {
					logger.Error("profile reload failed", "error", err)
				}
			}
		}
	})

	err = g.Wait()
	if !r.NoSave {
		if serr := ws.save(profilePath); serr != nil {
			logger.Error("failed to save profile", "path", profilePath, "error", serr)
			err = errors.Join(err, serr)
		} else {
			logger.Info("profile saved", "path", profilePath)
		}
	}
	return err
}

func (r *Run) outputs(ctx context.Context, g *errgroup.Group, logger *slog.Logger, rawLogger log.RawLogger) ([]sink.Sink, error) {
	var sinks []sink.Sink
	for _, o := range r.Output {
		switch strings.ToLower(o) {
		case "viiper":
			v, err := r.viiperSink(logger)
			if err != nil {
				return nil, err
			}
			g.Go(func() error { return v.Run(ctx) })
			sinks = append(sinks, v)
		case "uinput":
			u, err := sink.NewUinput(deviceName)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, u)
		case "log":
			sinks = append(sinks, sink.NewLog(log.NewRaw(os.Stdout)))
		case "none":
		}
	}
	if rawLogger != nil {
		sinks = append(sinks, sink.NewChanged(sink.NewLog(rawLogger)))
	}
	if r.Monitor.Addr != "" {
		m := monitor.New(logger)
		g.Go(func() error { return m.ListenAndServe(ctx, r.Monitor.Addr) })
		sinks = append(sinks, m)
	}
	return sinks, nil
}

func (r *Run) viiperSink(logger *slog.Logger) (*sink.Viiper, error) {
	password := r.Viiper.Password
	if r.Viiper.AskPassword {
		pw, err := readPassword("VIIPER password: ")
		if err != nil {
			return nil, err
		}
		password = pw
	}
	cfg := &viiper.Config{
		DialTimeout:  r.Viiper.DialTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Password:     password,
	}
	return sink.NewViiper(sink.ViiperOptions{Addr: r.Viiper.Addr, BusID: r.Viiper.Bus, Config: cfg}, logger), nil
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for a password: stdin is not a terminal")
	}
	_, _ = fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(pw)), nil
}
