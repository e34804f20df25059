package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// ExportData is the JSON document written by ExportJSON.
type ExportData struct {
	Run       *RunMetadata    `json:"run,omitempty"`
	Waypoints dynamo.Path     `json:"waypoints"`
	Samples   []dynamo.Sample `json:"samples"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, path dynamo.Path, samples []dynamo.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Waypoints: path, Samples: samples})
}

// ExportCSV writes samples in the track.csv layout. Angles stay in radians.
func ExportCSV(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trackHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.X),
			formatFloat(s.Y),
			formatFloat(s.Heading),
			formatFloat(s.YawRate),
			formatFloat(s.Rudder),
			formatFloat(s.DesiredHeading),
			formatFloat(s.CrossTrack),
			strconv.Itoa(s.Target),
			strconv.FormatBool(s.Turning),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	trackSheet   = "Track"
	summarySheet = "Summary"
)

var xlsxHeader = []any{"Time(s)", "X(m)", "Y(m)", "Heading(deg)", "Rudder(deg)", "CrossTrack(m)", "Turning"}

// ExportXLSX writes a workbook with the track (angles in degrees) and, when
// meta is given, a summary sheet of run parameters and metrics.
func ExportXLSX(w io.Writer, meta *RunMetadata, samples []dynamo.Sample) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", trackSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(trackSheet, "A1", &xlsxHeader); err != nil {
		return err
	}
	for i, s := range samples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.Time, s.X, s.Y,
			dynamo.Degrees(s.Heading), dynamo.Degrees(s.Rudder),
			s.CrossTrack, s.Turning,
		}
		if err := f.SetSheetRow(trackSheet, cell, &row); err != nil {
			return err
		}
	}

	if meta != nil {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return err
		}
		rows := [][]any{
			{"id", meta.ID},
			{"name", meta.Name},
			{"route", meta.Route},
			{"integrator", meta.Integrator},
			{"dt", meta.Dt},
			{"steps", meta.Steps},
			{"completed", meta.Completed},
			{"T", meta.TimeConstant},
			{"K", meta.RudderGain},
			{"U", meta.Speed},
			{"kp", meta.Kp},
			{"ki", meta.Ki},
			{"kd", meta.Kd},
		}
		for _, name := range sortedKeys(meta.Metrics) {
			rows = append(rows, []any{name, meta.Metrics[name]})
		}
		for i := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func sortedKeys(m map[string]float64) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
