package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/sim"
)

func testRun() (*config.Config, dynamo.Path, *sim.Result) {
	cfg := config.GetPreset("corner")
	path := dynamo.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	result := &sim.Result{
		Samples: []dynamo.Sample{
			{Time: 0, X: 0, Y: 0},
			{Time: 0.1, X: 0.4, Y: 0.01, Heading: 0.02, YawRate: 0.1, Rudder: -0.05, CrossTrack: 0.01, Target: 1, Turning: true},
		},
		Metrics:   map[string]float64{"cross_track_rms": 1.5},
		Steps:     1,
		Completed: true,
	}
	return cfg, path, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, path, result := testRun()
	runID, err := st.Save(cfg, path, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "corner" {
		t.Errorf("expected name 'corner', got '%s'", meta.Name)
	}
	if meta.Route != "corner" {
		t.Errorf("expected route 'corner', got '%s'", meta.Route)
	}
	if !meta.Completed || meta.Steps != 1 {
		t.Errorf("expected completed run of 1 step, got %+v", meta)
	}
	if meta.Metrics["cross_track_rms"] != 1.5 {
		t.Errorf("expected cross_track_rms 1.5, got %f", meta.Metrics["cross_track_rms"])
	}

	samples, err := st.LoadTrack(runID)
	if err != nil {
		t.Fatalf("load track failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if got := samples[1]; got.Target != 1 || !got.Turning || got.Rudder != -0.05 {
		t.Errorf("sample round trip mismatch: %+v", got)
	}

	loadedPath, err := st.LoadPath(runID)
	if err != nil {
		t.Fatalf("load path failed: %v", err)
	}
	if len(loadedPath) != 3 || loadedPath[2] != (dynamo.Point{X: 100, Y: 100}) {
		t.Errorf("unexpected path %v", loadedPath)
	}

	loadedCfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loadedCfg.Controller.Kd != cfg.Controller.Kd {
		t.Errorf("expected kd %v, got %v", cfg.Controller.Kd, loadedCfg.Controller.Kd)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, path, result := testRun()
	for i := 0; i < 2; i++ {
		if _, err := st.Save(cfg, path, result); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// stray directory without metadata
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Error("run ids should be unique")
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, path, result := testRun()
	runID, err := st.Save(cfg, path, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, trackFile, waypointsFile, configFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	_, path, result := testRun()
	var buf bytes.Buffer
	if err := ExportJSON(&buf, nil, path, result.Samples); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Samples) != 2 || len(got.Waypoints) != 3 || got.Run != nil {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestExportXLSX(t *testing.T) {
	_, _, result := testRun()
	meta := &RunMetadata{ID: "r1", Name: "corner", Metrics: map[string]float64{"b": 2, "a": 1}}

	var buf bytes.Buffer
	if err := ExportXLSX(&buf, meta, result.Samples); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(trackSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Time(s)" || rows[0][4] != "Rudder(deg)" {
		t.Errorf("unexpected header %v", rows[0])
	}

	summary, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 15 {
		t.Fatalf("expected 13 parameter rows and 2 metrics, got %d", len(summary))
	}
	if summary[0][0] != "id" || summary[0][1] != "r1" {
		t.Errorf("summary starts at row 1, got %v", summary[0])
	}
	last := summary[len(summary)-1]
	if last[0] != "b" || last[1] != "2" {
		t.Errorf("expected metrics sorted at the end, got %v", last)
	}
}
