package project

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/traffic2video/internal/scene"
	"github.com/ivlev/traffic2video/internal/track"
)

func sceneWithWaypoints(t *testing.T, n int) *scene.Scene {
	t.Helper()
	sc := scene.New("roundtrip", 1280, 720)
	sc.Roads = append(sc.Roads, scene.Road{ID: "r1", X: 0, Y: 300, Width: 1280, Height: 100, Lanes: 2})
	sc.Labels = append(sc.Labels, scene.TextLabel{Text: "hello", X: 10, Y: 20, FontSize: 14, Color: "white"})
	sc.AddCamera(100, 100, 1.0)

	v := sc.AddVehicle("car", color.RGBA{R: 200, G: 40, B: 40, A: 255}, 1.25)
	for i := 0; i < n; i++ {
		err := v.Track.Append(track.Waypoint{
			Pos:   track.Point{X: float64(i) * 12.5, Y: 350.25},
			Time:  float64(i) * 2.5,
			Dwell: float64(i%2) * 0.75,
		})
		require.NoError(t, err)
	}
	return sc
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		for _, ext := range []string{".json", ".yaml"} {
			t.Run(ext[1:]+"/"+string(rune('0'+n))+"_waypoints", func(t *testing.T) {
				sc := sceneWithWaypoints(t, n)
				path := filepath.Join(t.TempDir(), "project"+ext)

				require.NoError(t, Save(sc, path))
				loaded, warnings, err := Load(path)
				require.NoError(t, err)
				assert.Empty(t, warnings)

				require.Len(t, loaded.Vehicles, 1)
				got := loaded.Vehicles[0]
				want := sc.Vehicles[0]

				assert.Equal(t, want.ID, got.ID)
				assert.Equal(t, want.Name, got.Name)
				assert.Equal(t, want.Color, got.Color)
				assert.Equal(t, want.Scale, got.Scale)
				if diff := cmp.Diff(want.Track.Waypoints(), got.Track.Waypoints()); diff != "" {
					t.Errorf("trajectory mismatch (-want +got):\n%s", diff)
				}

				assert.Equal(t, sc.Roads, loaded.Roads)
				assert.Equal(t, sc.Cameras, loaded.Cameras)
				assert.Equal(t, sc.Labels, loaded.Labels)
				assert.Equal(t, sc.Width, loaded.Width)
				assert.Equal(t, sc.Height, loaded.Height)
			})
		}
	}
}

func TestLoadSkipsMalformedVehicle(t *testing.T) {
	malformed := `{
  "name": "bad",
  "width": 640,
  "height": 480,
  "vehicles": [
    {
      "id": "v1",
      "name": "broken",
      "scale": 1,
      "trajectory": [
        {"timestamp": 5, "position": [0, 0], "dwell_duration": 0},
        {"timestamp": 2, "position": [10, 0], "dwell_duration": 0}
      ]
    },
    {
      "id": "v2",
      "name": "fine",
      "scale": 1,
      "trajectory": [
        {"timestamp": 0, "position": [0, 0], "dwell_duration": 0},
        {"timestamp": 4, "position": [40, 0], "dwell_duration": 1}
      ]
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(malformed), 0644))

	sc, warnings, err := Load(path)
	require.NoError(t, err)

	require.Len(t, warnings, 1, "the broken vehicle must be reported")
	var oe *track.OrderingError
	assert.ErrorAs(t, warnings[0], &oe)

	require.Len(t, sc.Vehicles, 1, "the good vehicle must still load")
	assert.Equal(t, "fine", sc.Vehicles[0].Name)
	assert.Equal(t, 5.0, sc.Vehicles[0].Track.TotalDuration())
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","width":0,"height":480}`), 0644))

	_, _, err := Load(path)
	assert.Error(t, err, "zero canvas width must fail validation")
}

func TestLoadRejectsNegativeDwell(t *testing.T) {
	doc := `{
  "name": "neg",
  "width": 640,
  "height": 480,
  "vehicles": [
    {"id": "v", "name": "v", "scale": 1,
     "trajectory": [{"timestamp": 0, "position": [0,0], "dwell_duration": -1}]}
  ]
}`
	path := filepath.Join(t.TempDir(), "neg.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, _, err := Load(path)
	assert.Error(t, err)
}
