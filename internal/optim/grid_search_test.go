package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/shipsim/internal/config"
	"github.com/san-kum/shipsim/internal/experiment"
)

func cornerBuilder(duration float64) BuildFunc {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.GetPreset("corner")
		cfg.Sim.Duration = duration
		if kp, ok := params["kp"]; ok {
			cfg.Controller.Kp = kp
		}
		if kd, ok := params["kd"]; ok {
			cfg.Controller.Kd = kd
		}
		return experiment.New(cfg)
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	_, err := NewGridSearch([]string{"kp"}, nil)
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"kp"}, [][]float64{{}})
	assert.Error(t, err)

	g, err := NewGridSearch([]string{"kp", "kd"}, [][]float64{{1, 2}, {3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 6, g.Size())
}

func TestSearchVisitsEveryPoint(t *testing.T) {
	g, err := NewGridSearch([]string{"kp", "kd"}, [][]float64{{1, 2}, {3, 4, 5}})
	require.NoError(t, err)

	var seen []map[string]float64
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		seen = append(seen, params)
		return nil, errors.New("skip")
	}

	_, _, err = g.Search(context.Background(), build, "cross_track_rms")
	assert.ErrorIs(t, err, ErrNoCandidate)
	require.Len(t, seen, 6)
	assert.Equal(t, map[string]float64{"kp": 2, "kd": 5}, seen[5])
}

func TestSearchFindsCompletedMinimum(t *testing.T) {
	g, err := NewGridSearch([]string{"kp"}, [][]float64{{1.5, 2}})
	require.NoError(t, err)

	params, best, err := g.Search(context.Background(), cornerBuilder(600), "cross_track_rms")
	require.NoError(t, err)
	require.Contains(t, params, "kp")
	assert.Greater(t, best, 0.0)

	// the winner's metric is reproducible
	exp, err := cornerBuilder(600)(params)
	require.NoError(t, err)
	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, best, res.Metrics["cross_track_rms"])
}

func TestSearchSkipsIncompleteRuns(t *testing.T) {
	g, err := NewGridSearch([]string{"kp"}, [][]float64{{2}})
	require.NoError(t, err)

	_, _, err = g.Search(context.Background(), cornerBuilder(5), "cross_track_rms")
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestSearchUnknownMetric(t *testing.T) {
	g, err := NewGridSearch([]string{"kp"}, [][]float64{{2}})
	require.NoError(t, err)

	_, _, err = g.Search(context.Background(), cornerBuilder(600), "energy")
	assert.Error(t, err)
}

func TestSearchCanceled(t *testing.T) {
	g, err := NewGridSearch([]string{"kp"}, [][]float64{{2}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, cornerBuilder(600), "cross_track_rms")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
}
