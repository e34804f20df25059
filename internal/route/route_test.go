package route

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/shipsim/internal/dynamo"
)

func TestResample(t *testing.T) {
	in := dynamo.Path{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}}

	out, err := Resample(in, 2)
	require.NoError(t, err)

	// 5 points for the first leg, 3 for the second, duplicate dropped
	assert.Len(t, out, 1+5+3)
	assert.Equal(t, dynamo.Point{X: 10, Y: 5}, out[len(out)-1])
	for i := 1; i < len(out); i++ {
		d := out[i-1].Dist(out[i])
		assert.Greater(t, d, 0.0)
		assert.LessOrEqual(t, d, 2.0+1e-9)
	}
	assert.InDelta(t, Length(in), Length(out), 1e-9)
}

func TestResampleKeepsVerticesWithoutSpacing(t *testing.T) {
	in := dynamo.Path{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 3, Y: 4}}

	out, err := Resample(in, 0)
	require.NoError(t, err)
	assert.Equal(t, dynamo.Path{{X: 0, Y: 0}, {X: 3, Y: 4}}, out)
}

func TestResampleDegenerate(t *testing.T) {
	_, err := Resample(dynamo.Path{{X: 1, Y: 1}, {X: 1, Y: 1}}, 2)
	assert.ErrorIs(t, err, dynamo.ErrDegeneratePath)
}

func TestLength(t *testing.T) {
	assert.InDelta(t, 200, Length(dynamo.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}), 1e-12)
	assert.Zero(t, Length(nil))
}

func TestOffset(t *testing.T) {
	out := Offset(dynamo.Path{{X: 1, Y: 2}}, 3, -1)
	assert.Equal(t, dynamo.Path{{X: 4, Y: 1}}, out)
}

func TestLoadCSVSampling(t *testing.T) {
	data := "time,x,y\n0,0,0\n1,1,0.5\n2,2,1\n3,3,1.5\n4,4,2\n"

	path, err := LoadCSV(strings.NewReader(data), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, dynamo.Path{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 4, Y: 2}}, path)

	all, err := LoadCSV(strings.NewReader(data), CSVOptions{XColumn: "X", YColumn: "Y"})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing column", "a,b\n1,2\n3,4\n"},
		{"bad number", "x,y\n1,2\nfoo,4\n"},
		{"too short", "x,y\n1,2\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.data), CSVOptions{XColumn: "x", YColumn: "y", Sampling: 1})
			assert.Error(t, err)
		})
	}
}

func TestLoadCSVFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "track.csv")
	require.NoError(t, os.WriteFile(name, []byte("x,y\n0,0\n5,5\n10,10\n"), 0644))

	path, err := LoadCSVFile(name, CSVOptions{XColumn: "x", YColumn: "y", Sampling: 1})
	require.NoError(t, err)
	assert.Len(t, path, 3)

	_, err = LoadCSVFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultCSVOptions())
	assert.Error(t, err)
}

func TestShapes(t *testing.T) {
	for _, name := range ShapeNames() {
		t.Run(name, func(t *testing.T) {
			p, err := Shape(name)
			require.NoError(t, err)
			require.NoError(t, p.Validate())
			assert.Greater(t, Length(p), 0.0)
			assert.False(t, math.IsNaN(Length(p)))
		})
	}

	corner, err := Shape("corner")
	require.NoError(t, err)
	corner[0].X = 99
	fresh, _ := Shape("corner")
	assert.Zero(t, fresh[0].X, "shapes are returned as copies")

	_, err = Shape("spiral")
	assert.Error(t, err)
}
