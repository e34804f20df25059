package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/shipsim/internal/automation"
	"github.com/san-kum/shipsim/internal/experiment"
	"github.com/san-kum/shipsim/internal/optim"
	"github.com/san-kum/shipsim/internal/storage"
)

func newTuneCmd() *cobra.Command {
	var (
		kps, kis, kds []float64
		metric        string
	)
	cmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search heading pid gains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			gs, err := optim.NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kps, kis, kds})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "searching %d gain sets on %s, minimising %s\n", gs.Size(), base.Name, metric)
			best, score, err := gs.Search(ctx, func(p map[string]float64) (*experiment.Experiment, error) {
				cfg := base.Clone()
				cfg.Controller.Kp, cfg.Controller.Ki, cfg.Controller.Kd = p["kp"], p["ki"], p["kd"]
				return experiment.New(cfg)
			}, metric)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "best: kp=%g ki=%g kd=%g %s=%.6f\n", best["kp"], best["ki"], best["kd"], metric, score)
			return nil
		},
	}
	addOverrideFlags(cmd)
	f := cmd.Flags()
	f.Float64SliceVar(&kps, "kp-grid", []float64{1, 2, 3}, "kp values")
	f.Float64SliceVar(&kis, "ki-grid", []float64{0, 0.005}, "ki values")
	f.Float64SliceVar(&kds, "kd-grid", []float64{2, 4, 6}, "kd values")
	f.StringVar(&metric, "metric", "cross_track_rms", "metric to minimise")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		param    string
		minVal, maxVal float64
		steps    int
	)
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "vary one gain or vessel coefficient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
				Base:      base,
				ParamName: param,
				ParamMin:  minVal,
				ParamMax:  maxVal,
				NumSteps:  steps,
			}, experiment.NewRegistry(), logger.Logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tDONE\tSTEPS\tXTE_RMS\tMAX_XTE\tEFFORT\n", param)
			for _, r := range results {
				fmt.Fprintf(w, "%.4g\t%v\t%d\t%.3f\t%.3f\t%.3f\n", r.ParamValue, r.Completed, r.Steps,
					r.Metrics["cross_track_rms"], r.Metrics["max_cross_track"], r.Metrics["control_effort"])
			}
			return w.Flush()
		},
	}
	addOverrideFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&param, "param", "kp", "kp, ki, kd, max_yaw_rate, look_ahead_min, look_ahead_max, T, K or U")
	f.Float64Var(&minVal, "min", 1, "first value")
	f.Float64Var(&maxVal, "max", 3, "last value")
	f.IntVar(&steps, "steps", 5, "number of values")
	return cmd
}

func newFleetCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "fleet [scenario.yaml]",
		Short: "run every vessel of a scenario concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			runs, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), logger.Logger)
			if err != nil {
				return err
			}

			var st *storage.Store
			if save {
				st = storage.New(dataDir)
				if err := st.Init(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scenario %s: %d vessels\n", sc.Name, len(runs))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDONE\tSTEPS\tXTE_RMS\tRUN_ID")
			for _, r := range runs {
				id := "-"
				if st != nil {
					if id, err = st.Save(r.Config, r.Path, r.Result); err != nil {
						return err
					}
				}
				fmt.Fprintf(w, "%s\t%v\t%d\t%.3f\t%s\n", r.Name, r.Result.Completed, r.Result.Steps,
					r.Result.Metrics["cross_track_rms"], id)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store each vessel's run")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	mc := automation.MonteCarloConfig{}
	cmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "perturb the start pose and count converged runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			mc.Base = base

			ctx, cancel := signalContext()
			defer cancel()

			results, err := automation.RunMonteCarlo(ctx, &mc, experiment.NewRegistry(), logger.Logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRIAL\tDX0\tDY0\tHDG0\tDONE\tCONVERGED\tSTEPS\tXTE_RMS")
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.1f\t%v\t%v\t%d\t%.3f\n", r.TrialID, r.StartX, r.StartY,
					r.HeadingDeg, r.Completed, r.Converged, r.Steps, r.Metrics["cross_track_rms"])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			completed, conv := automation.MonteCarloStats(results)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d completed, %d/%d converged\n", completed, len(results), conv, len(results))
			return nil
		},
	}
	addOverrideFlags(cmd)
	f := cmd.Flags()
	f.IntVar(&mc.NumTrials, "trials", 20, "number of trials")
	f.Float64Var(&mc.Offset, "offset", 5, "start position spread (m)")
	f.Float64Var(&mc.HeadingDeg, "heading-spread", 20, "start heading spread (deg)")
	f.Int64Var(&mc.Seed, "seed", 1, "random seed, 0 for clock")
	f.Float64Var(&mc.Tolerance, "tolerance", 10, "max tail cross-track (m)")
	f.IntVar(&mc.TailSamples, "tail", 50, "tail samples checked for convergence")
	return cmd
}
