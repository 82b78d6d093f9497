package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"swing-plate.klederson.com/internal/app"
	"swing-plate.klederson.com/internal/bluetooth"
	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/device"
	"swing-plate.klederson.com/internal/logging"
	"swing-plate.klederson.com/internal/replay"
	"swing-plate.klederson.com/internal/scale"
)

var (
	flagConfig   string
	flagDemo     bool
	flagHeadless bool
	flagTempo    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swing-plate",
		Short: "Swing Plate - dual load-cell swing capture over BLE",
		Long: `Swing Plate watches a lead and a trail weight plate, waits for a golfer
to settle, counts down, captures the weight shift through the swing and
sends the dataset to the connected phone over Bluetooth Low Energy.

Requires sudo or CAP_NET_ADMIN capability for the BLE peripheral.
Use --demo flag for demonstration mode without plates or Bluetooth.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.config/swing-plate/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")

	rootCmd.Flags().BoolVar(&flagDemo, "demo", false, "Run in demo mode with a simulated golfer and phone")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Log to stderr instead of showing the dashboard")
	rootCmd.Flags().String("adapter", "", "Bluetooth adapter shown in the dashboard")
	rootCmd.Flags().String("port", "", "Serial port of the load-cell bridge")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("device.adapter", rootCmd.Flags().Lookup("adapter"))
	_ = viper.BindPFlag("scale.port", rootCmd.Flags().Lookup("port"))

	replayCmd := &cobra.Command{
		Use:   "replay <file.csv>",
		Short: "Replay a recorded ms,lead,trail stream and print the cues",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().StringVar(&flagTempo, "tempo", "", "Tempo written before the replay, e.g. 21/7")
	rootCmd.AddCommand(replayCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings() (*config.Settings, error) {
	if err := config.Init(flagConfig); err != nil {
		return nil, err
	}
	if flagDemo {
		viper.Set("scale.source", config.SourceDemo)
	}

	settings, err := config.Load()
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintln(os.Stderr, "Invalid configuration:")
			for _, e := range verrs {
				fmt.Fprintf(os.Stderr, "  %s\n", e.Error())
			}
		}
		return nil, err
	}
	return settings, nil
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	// The dashboard owns the terminal; fall back to plain logs when piped
	fd := os.Stdout.Fd()
	headless := flagHeadless || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))

	logPath := settings.Logging.File
	if logPath == "" && !headless {
		logPath = filepath.Join(config.ConfigDir(), "swing-plate.log")
	}
	logger, err := logging.NewLogger(logPath, settings.Logging.Level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lead, trail, link, cleanup, err := startHardware(ctx, settings, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer cleanup()

	ctrl := device.New(device.Options{
		Lead:     lead,
		Trail:    trail,
		Link:     link,
		Logger:   logger,
		LockFile: settings.Runtime.LockFile,
	})

	logger.Info("starting",
		"version", config.AppVersion,
		"name", settings.Device.Name,
		"source", settings.Scale.Source,
		"headless", headless)

	if headless {
		return ctrl.Run(ctx)
	}

	model := app.New(app.Options{
		DeviceName: settings.Device.Name,
		Adapter:    settings.Device.Adapter,
		Demo:       settings.Scale.Source == config.SourceDemo,
		Cancel:     cancel,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(config.TargetFPS),
	)
	ctrl.SetProgram(p)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil {
			p.Send(app.ErrorMsg{Err: err})
		}
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return err
	}
	if m, ok := final.(app.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// startHardware opens the plates and the BLE link. A bridge that cannot be
// opened or stays silent is fatal.
func startHardware(ctx context.Context, s *config.Settings, logger *logging.Logger) (lead, trail capture.Source, link device.Link, cleanup func(), err error) {
	if s.Scale.Source == config.SourceDemo {
		ms := scale.NewMockScale()
		ms.Start(ctx)
		ml := bluetooth.NewMockLink()
		ml.Start(ctx)
		return ms.Lead(), ms.Trail(), ml, func() {
			ml.Stop()
			ms.Stop()
		}, nil
	}

	bridge, err := scale.OpenSerial(s.Scale.Port, s.Scale.Baud, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := bridge.WaitReady(ctx, config.StartupTimeout); err != nil {
		_ = bridge.Close()
		return nil, nil, nil, nil, err
	}

	periph, err := bluetooth.NewPeripheral(bluetooth.Options{
		Name:               s.Device.Name,
		ServiceUUID:        s.Device.ServiceUUID,
		CharacteristicUUID: s.Device.CharacteristicUUID,
		Logger:             logger,
	})
	if err != nil {
		_ = bridge.Close()
		return nil, nil, nil, nil, err
	}
	if err := periph.Start(); err != nil {
		_ = bridge.Close()
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "The BLE peripheral requires elevated permissions.")
		fmt.Fprintln(os.Stderr, "Try one of:")
		fmt.Fprintln(os.Stderr, "  sudo ./swing-plate")
		fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./swing-plate")
		fmt.Fprintln(os.Stderr, "  ./swing-plate --demo    (demo mode, no hardware needed)")
		return nil, nil, nil, nil, err
	}

	return bridge.Lead(), bridge.Trail(), periph, func() {
		periph.Stop()
		_ = bridge.Close()
	}, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	if err := config.Init(flagConfig); err != nil {
		return err
	}
	level := viper.GetString("logging.level")
	if !cmd.Flags().Changed("log-level") {
		level = logging.LevelWarn
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := replay.Load(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	res, err := replay.Run(rows, replay.Options{Tempo: flagTempo, Logger: logger})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	replay.RenderTable(out, res)
	for i, ds := range res.Datasets() {
		fmt.Fprintf(out, "\ndataset %d:\n%s\n", i+1, ds)
	}
	return nil
}
