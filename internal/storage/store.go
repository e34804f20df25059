// Package storage persists simulation runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	trackFile     = "track.csv"
	waypointsFile = "waypoints.csv"
	configFile    = "config.yaml"
)

var trackHeader = []string{
	"time", "x", "y", "heading", "yaw_rate", "rudder",
	"desired_heading", "cross_track", "target", "turning",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Steps        int                `json:"steps"`
	Completed    bool               `json:"completed"`
	Integrator   string             `json:"integrator"`
	Route        string             `json:"route"`
	Waypoints    int                `json:"waypoints"`
	TimeConstant float64            `json:"time_constant"`
	RudderGain   float64            `json:"rudder_gain"`
	Speed        float64            `json:"speed"`
	Kp           float64            `json:"kp"`
	Ki           float64            `json:"ki"`
	Kd           float64            `json:"kd"`
	Metrics      map[string]float64 `json:"metrics"`
}

// NewRunID returns name_<utc timestamp>_<short uuid>.
func NewRunID(name string) string {
	return fmt.Sprintf("%s_%s_%s", name, time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
}

func routeName(rc config.RouteConfig) string {
	switch {
	case len(rc.Waypoints) > 0:
		return "waypoints"
	case rc.File != "":
		return filepath.Base(rc.File)
	}
	return rc.Shape
}

// Save writes metadata, the sampled track, the waypoints and the effective
// config under a new run directory and returns its id.
func (s *Store) Save(cfg *config.Config, path dynamo.Path, result *sim.Result) (string, error) {
	runID := NewRunID(cfg.Name)
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Name:         cfg.Name,
		Timestamp:    time.Now(),
		Dt:           cfg.Sim.Dt,
		Duration:     float64(result.Steps) * cfg.Sim.Dt,
		Steps:        result.Steps,
		Completed:    result.Completed,
		Integrator:   cfg.Integrator,
		Route:        routeName(cfg.Route),
		Waypoints:    len(path),
		TimeConstant: cfg.Vessel.TimeConstant,
		RudderGain:   cfg.Vessel.RudderGain,
		Speed:        cfg.Vessel.Speed,
		Kp:           cfg.Controller.Kp,
		Ki:           cfg.Controller.Ki,
		Kd:           cfg.Controller.Kd,
		Metrics:      result.Metrics,
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, trackFile), func(w io.Writer) error {
		return ExportCSV(w, result.Samples)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, waypointsFile), func(w io.Writer) error {
		return writeWaypoints(w, path)
	}); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeWaypoints(w io.Writer, path dynamo.Path) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, p := range path {
		if err := cw.Write([]string{formatFloat(p.X), formatFloat(p.Y)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the config a run was produced with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func (s *Store) LoadTrack(runID string) ([]dynamo.Sample, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), trackFile))
	if err != nil {
		return nil, err
	}

	samples := make([]dynamo.Sample, 0, len(records))
	for i, rec := range records {
		if len(rec) < len(trackHeader) {
			return nil, fmt.Errorf("track row %d: %d fields", i+2, len(rec))
		}
		var v [8]float64
		for j := range v {
			if v[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, fmt.Errorf("track row %d: %s: %w", i+2, trackHeader[j], err)
			}
		}
		target, err := strconv.Atoi(rec[8])
		if err != nil {
			return nil, fmt.Errorf("track row %d: target: %w", i+2, err)
		}
		turning, err := strconv.ParseBool(rec[9])
		if err != nil {
			return nil, fmt.Errorf("track row %d: turning: %w", i+2, err)
		}
		samples = append(samples, dynamo.Sample{
			Time: v[0], X: v[1], Y: v[2], Heading: v[3], YawRate: v[4], Rudder: v[5],
			DesiredHeading: v[6], CrossTrack: v[7], Target: target, Turning: turning,
		})
	}
	return samples, nil
}

func (s *Store) LoadPath(runID string) (dynamo.Path, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), waypointsFile))
	if err != nil {
		return nil, err
	}

	path := make(dynamo.Path, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("waypoint row %d: %d fields", i+2, len(rec))
		}
		x, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, err
		}
		path = append(path, dynamo.Point{X: x, Y: y})
	}
	return path, nil
}

// readCSV returns every record after the header.
func readCSV(name string) ([][]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
