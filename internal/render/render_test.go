package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/traffic2video/internal/sampler"
	"github.com/ivlev/traffic2video/internal/scene"
	"github.com/ivlev/traffic2video/internal/track"
)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc := scene.New("render-test", 200, 150)
	sc.Roads = append(sc.Roads, scene.Road{ID: "r", X: 0, Y: 50, Width: 200, Height: 50, Lanes: 2})

	v := sc.AddVehicle("car", color.RGBA{R: 10, G: 200, B: 30, A: 255}, 1.0)
	require.NoError(t, v.Track.Append(track.Waypoint{Pos: track.Point{X: 40, Y: 75}, Time: 1}))
	require.NoError(t, v.Track.Append(track.Waypoint{Pos: track.Point{X: 160, Y: 75}, Time: 5}))
	return sc
}

func TestFrameDrawsVehicleAtSampledPosition(t *testing.T) {
	sc := testScene(t)
	r, err := New(sampler.Sampler{}, "")
	require.NoError(t, err)

	// t=3 is halfway through the travel phase: x = 100.
	frame := r.Frame(sc, 3)
	defer r.Release(frame)

	assert.Equal(t, sc.Vehicles[0].Color, frame.RGBAAt(100, 75))
	// Background far from any entity.
	assert.Equal(t, sc.Background, frame.RGBAAt(5, 140))
}

func TestFrameSkipsHiddenVehicle(t *testing.T) {
	sc := testScene(t)
	r, err := New(sampler.Sampler{Spawn: sampler.SpawnHidden}, "")
	require.NoError(t, err)

	// Before the first arrival under SpawnHidden there is nothing to draw;
	// the first waypoint's pixel shows road asphalt instead.
	frame := r.Frame(sc, 0.2)
	defer r.Release(frame)

	assert.NotEqual(t, sc.Vehicles[0].Color, frame.RGBAAt(40, 75))
}

func TestFrameEmptyTrackIsNotFatal(t *testing.T) {
	sc := scene.New("empty-track", 100, 100)
	sc.AddVehicle("ghost", color.RGBA{R: 255, A: 255}, 1.0)
	sc.Labels = append(sc.Labels, scene.TextLabel{Text: "t", X: 10, Y: 20, FontSize: 13, Color: "red"})
	sc.AddCamera(50, 50, 1.0)

	r, err := New(sampler.Sampler{}, "")
	require.NoError(t, err)

	frame := r.Frame(sc, 1.0)
	defer r.Release(frame)
	assert.Equal(t, 100, frame.Bounds().Dx())
}

func TestFrameQROverlay(t *testing.T) {
	sc := scene.New("qr", 300, 300)
	sc.AddVehicle("car", color.RGBA{R: 255, A: 255}, 1.0)

	r, err := New(sampler.Sampler{}, "https://example.com/scenario")
	require.NoError(t, err)

	frame := r.Frame(sc, 0)
	defer r.Release(frame)

	// QR quiet zone is white; background is not.
	corner := frame.RGBAAt(300-20, 300-20)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, corner)
}

func TestFramePooledBufferIsClean(t *testing.T) {
	sc := testScene(t)
	r, err := New(sampler.Sampler{}, "")
	require.NoError(t, err)

	// Render, release, render a different time: no pixels from the first
	// frame may survive in the recycled buffer.
	f1 := r.Frame(sc, 1)
	r.Release(f1)
	f2 := r.Frame(sc, 5)
	defer r.Release(f2)

	assert.NotEqual(t, sc.Vehicles[0].Color, f2.RGBAAt(40, 75), "stale sprite from recycled buffer")
	assert.Equal(t, sc.Vehicles[0].Color, f2.RGBAAt(160, 75))
}
