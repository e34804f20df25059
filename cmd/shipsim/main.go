package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/logging"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logDir     string
	// run overrides
	dt          float64
	duration    float64
	integrator  string
	kp          float64
	ki          float64
	kd          float64
	speed       float64
	startX      float64
	startY      float64
	headingDeg  float64
	routeShape  string
	routeFile   string
	spacing     float64
	noSave      bool
	outPath     string
	format      string
	seriesNames []string
	plotWidth   int
	plotHeight  int
	canvasW     int
	canvasH     int
	svgPath     string
	gifPath     string

	logger *logging.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shipsim",
		Short:         "vessel path-tracking simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(logLevel, logDir)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, nil)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".shipsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&logDir, "log-dir", "", "write rotated JSON logs here instead of stderr")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addOverrideFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addOverrideFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifPath, "gif", "shipsim.gif", "where G saves recordings")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&seriesNames, "series", []string{"heading", "rudder", "cross_track"}, "series to plot")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "chart height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json, csv, xlsx, png or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json, csv, xlsx, png or svg")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (directory for png/svg), stdout if empty")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "draw a stored track in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().IntVar(&canvasW, "width", 80, "canvas width in cells")
	renderCmd.Flags().IntVar(&canvasH, "height", 30, "canvas height in cells")
	renderCmd.Flags().StringVar(&svgPath, "svg", "", "also write the canvas as SVG")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range config.ListPresets() {
				fmt.Fprintf(out, "  %-18s %s\n", name, config.PresetInfo[name])
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, renderCmd, presetsCmd,
		newTuneCmd(), newSweepCmd(), newFleetCmd(), newMonteCarloCmd())
	return rootCmd
}

func addOverrideFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", 0.1, "timestep (s)")
	f.Float64Var(&duration, "time", 600, "simulated time cap (s)")
	f.StringVar(&integrator, "integrator", "nomoto", "nomoto, euler or rk4")
	f.Float64Var(&kp, "kp", 2.0, "heading pid kp")
	f.Float64Var(&ki, "ki", 0.005, "heading pid ki")
	f.Float64Var(&kd, "kd", 4.0, "heading pid kd")
	f.Float64Var(&speed, "speed", 4.0, "vessel speed (m/s)")
	f.Float64Var(&startX, "start-x", 0, "start x offset from the first waypoint (m)")
	f.Float64Var(&startY, "start-y", 0, "start y offset from the first waypoint (m)")
	f.Float64Var(&headingDeg, "heading", 0, "start heading (deg, 0 = east); default follows the first path segment")
	f.StringVar(&routeShape, "route", "", "route shape")
	f.StringVar(&routeFile, "route-file", "", "route CSV with x,y columns")
	f.Float64Var(&spacing, "spacing", 2.0, "waypoint resampling distance (m)")
}

// resolveConfig layers defaults, preset (flag or argument), config file,
// SHIPSIM_* environment and changed flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := preset
	if len(args) > 0 {
		name = args[0]
	}
	base := config.DefaultConfig()
	if name != "" {
		if base = config.GetPreset(name); base == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	cfg, err := config.LoadWithBase(configFile, base)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if f.Changed("time") {
		cfg.Sim.Duration = duration
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("kp") {
		cfg.Controller.Kp = kp
	}
	if f.Changed("ki") {
		cfg.Controller.Ki = ki
	}
	if f.Changed("kd") {
		cfg.Controller.Kd = kd
	}
	if f.Changed("speed") {
		cfg.Vessel.Speed = speed
	}
	if f.Changed("start-x") {
		cfg.Vessel.StartX = startX
	}
	if f.Changed("start-y") {
		cfg.Vessel.StartY = startY
	}
	if f.Changed("heading") {
		cfg.Vessel.HeadingDeg = lo.ToPtr(headingDeg)
	}
	if f.Changed("route") {
		cfg.Route.Shape, cfg.Route.File, cfg.Route.Waypoints = routeShape, "", nil
	}
	if f.Changed("route-file") {
		cfg.Route.File, cfg.Route.Waypoints = routeFile, nil
	}
	if f.Changed("spacing") {
		cfg.Route.Spacing = spacing
	}
	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
