package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ScreenNote/internal/config"
	"ScreenNote/internal/logging"
	snet "ScreenNote/internal/net"
	"ScreenNote/internal/session"
	"ScreenNote/internal/ui"
)

// Set via ldflags at build time.
var version = "dev"

const (
	initialWidth  = 1024
	initialHeight = 768
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	config    string
	verbose   bool
	bridge    string
	advertise bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "screennote",
		Short:        "Draw over the screen",
		Long:         "ScreenNote opens a drawing overlay with pen, eraser, undo and redo, optionally driven by a remote toolbar.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := f.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "Path to screennote.yaml")
	root.PersistentFlags().BoolVar(&f.verbose, "verbose", false, "Enable debug logging")
	root.Flags().StringVar(&f.bridge, "bridge", "", "Serve the remote toolbar on this address (overrides bridge.addr)")
	root.Flags().BoolVar(&f.advertise, "advertise", false, "Announce the bridge over mDNS")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("screennote version %s\n", version))

	root.AddCommand(newConfigCmd(f), newDiscoverCmd())
	return root
}

// load resolves the config file and applies flag overrides on top of it.
func (f *flags) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, path, err := config.Load(f.config)
	if err != nil {
		return config.Config{}, nil, err
	}
	if cmd.Flags().Changed("bridge") {
		cfg.Bridge.Addr = f.bridge
	}
	if cmd.Flags().Changed("advertise") {
		cfg.Bridge.Advertise = f.advertise
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)
	if path != "" {
		logger.Debug("config loaded", "path", path)
	}
	return cfg, logger, nil
}

func newConfigCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := f.load(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newDiscoverCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List ScreenNote bridges on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			peers, err := snet.Browse(timeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(peers) == 0 {
				fmt.Fprintln(out, "no bridges found")
				return nil
			}
			for _, p := range peers {
				fmt.Fprintf(out, "%s\tws://%s/ws\n", p.Name, p.Addr)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "How long to wait for answers")
	return cmd
}

func run(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	app := ui.NewApp()
	s, err := session.New(cfg, session.Options{
		Width:  initialWidth,
		Height: initialHeight,
		Scale:  1,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var shareLink string
	if cfg.Bridge.Addr != "" {
		bridge := snet.NewBridge(s.Bus, s.Counts, ui.Dispatch, logger)
		defer bridge.Close()
		addr, err := bridge.Start(ctx, cfg.Bridge.Addr)
		if err != nil {
			return err
		}
		port := addr.(*net.TCPAddr).Port
		shareLink = "ws://" + net.JoinHostPort(snet.OutgoingIP(), strconv.Itoa(port)) + "/ws"
		logger.Info("remote toolbar available", "url", shareLink)

		if cfg.Bridge.Advertise {
			server, err := snet.Advertise(port, logger)
			if err != nil {
				logger.Warn("mDNS advertise failed", "err", err)
			} else {
				defer server.Shutdown()
			}
		}
	}

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			ui.Dispatch(app.Quit)
		case <-closed:
		}
	}()

	ui.RunApp(app, s, ui.Options{
		ShareLink:   shareLink,
		Width:       initialWidth,
		Height:      initialHeight,
		PenWidth:    cfg.Pen.Width,
		EraserWidth: cfg.Eraser.Width,
		Logger:      logger,
	})
	return nil
}
