package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/shipsim/internal/export"
	"github.com/san-kum/shipsim/internal/storage"
	"github.com/san-kum/shipsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs stored in", dataDir)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROUTE\tTIME\tSTEPS\tDONE\tXTE_RMS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\t%.3f\n",
			r.ID, r.Name, r.Route, r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Steps, r.Completed, r.Metrics["cross_track_rms"])
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadTrack(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range seriesNames {
		values, ok := viz.Series(samples, name)
		if !ok {
			return fmt.Errorf("unknown series %q (available: %s)", name, strings.Join(viz.SeriesNames(), ", "))
		}
		fmt.Fprintln(out, viz.RenderSeries(values, name, plotWidth, plotHeight))
		fmt.Fprintln(out)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrack(runID)
	if err != nil {
		return err
	}
	path, err := st.LoadPath(runID)
	if err != nil {
		return err
	}

	switch format {
	case "png", "svg":
		dir := outPath
		if dir == "" {
			dir = runID
		}
		files, err := export.WriteRunPlots(dir, format, path, samples)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", f)
		}
		return nil
	case "xlsx":
		name := outPath
		if name == "" {
			name = runID + ".xlsx"
		}
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := storage.ExportXLSX(f, meta, samples); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", name)
		return nil
	case "json", "csv":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	w := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if format == "csv" {
		return storage.ExportCSV(w, samples)
	}
	return storage.ExportJSON(w, meta, path, samples)
}

func renderRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadTrack(args[0])
	if err != nil {
		return err
	}
	path, err := st.LoadPath(args[0])
	if err != nil {
		return err
	}

	canvas := viz.RenderTrack(path, samples, canvasW, canvasH)
	fmt.Fprintln(cmd.OutOrStdout(), canvas.String())

	if svgPath != "" {
		svg := export.CanvasToSVG(canvas, 4, "#2b6cb0")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", svgPath)
	}
	return nil
}
