package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/experiment"
	"github.com/san-kum/shipsim/internal/sim"
	"github.com/san-kum/shipsim/internal/storage"
	"github.com/san-kum/shipsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	exp.SetLogger(logger.Logger)

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s (%d waypoints)...\n", cfg.Name, len(exp.Path()))
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "finished in %v\n", time.Since(start).Round(time.Millisecond))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(exp.Config(), exp.Path(), result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	printResult(out, result)
	return nil
}

func printResult(out io.Writer, result *sim.Result) {
	last := result.Last()
	fmt.Fprintf(out, "steps: %d (%.1fs)\n", result.Steps, last.Time)
	fmt.Fprintf(out, "completed: %v\n", result.Completed)
	fmt.Fprintf(out, "final: x=%.2f y=%.2f heading=%.1f°\n", result.Final.X, result.Final.Y, dynamo.Degrees(dynamo.NormalizeAngle(last.Heading)))
	fmt.Fprintln(out, "\nmetrics:")
	names := lo.Keys(result.Metrics)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-18s %.6f\n", name, result.Metrics[name])
	}
}

func buildSimulator(cfg *config.Config) (*sim.Simulator, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}
	exp.SetLogger(logger.Logger)
	return exp.GetSimulator(), nil
}

// runLive opens the scenario menu when neither a preset nor a config file
// was given.
func runLive(cmd *cobra.Command, args []string) error {
	var program tea.Model
	if len(args) == 0 && preset == "" && configFile == "" {
		program = viz.NewMenu(config.ListPresets(), config.PresetInfo, func(name string) (*sim.Simulator, error) {
			cfg := config.GetPreset(name)
			if cfg == nil {
				return nil, fmt.Errorf("unknown preset: %s", name)
			}
			return buildSimulator(cfg)
		})
	} else {
		cfg, err := resolveConfig(cmd, args)
		if err != nil {
			return err
		}
		s, err := buildSimulator(cfg)
		if err != nil {
			return err
		}
		m := viz.NewModel(s, cfg.Name)
		m.SetGIFPath(gifPath)
		program = m
	}

	_, err := tea.NewProgram(program, tea.WithAltScreen()).Run()
	return err
}
