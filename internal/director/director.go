// Package director builds ready-made scenarios. Its intersection template
// gives new users a complete project to export and a reference for the
// project file shape.
package director

import (
	"image/color"

	"github.com/ivlev/traffic2video/internal/scene"
	"github.com/ivlev/traffic2video/internal/track"
)

// Director generates demo scenes for a canvas size.
type Director struct {
	Width  int
	Height int
}

// NewDirector creates a Director with sane canvas defaults.
func NewDirector(width, height int) *Director {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	return &Director{Width: width, Height: height}
}

// GenerateIntersection builds a two-road crossing with three vehicles: one
// car stops at the intersection (a dwell at its stop line) before crossing,
// one passes straight through, and a bus comes down the vertical road with
// a short stop. A camera watches the crossing.
func (d *Director) GenerateIntersection() (*scene.Scene, error) {
	sc := scene.New("demo-intersection", d.Width, d.Height)

	w := float64(d.Width)
	h := float64(d.Height)
	roadW := 100.0
	hY := h/2 - roadW/2 // horizontal road top
	vX := w/2 - roadW/2 // vertical road left

	sc.Roads = []scene.Road{
		{ID: "road-ew", X: 0, Y: hY, Width: w, Height: roadW, Lanes: 2},
		{ID: "road-ns", X: vX, Y: 0, Width: roadW, Height: h, Lanes: 2},
	}

	laneEast := hY + roadW/4   // upper lane, driving east
	laneWest := hY + roadW*3/4 // lower lane, driving west
	laneSouth := vX + roadW/4

	stopLine := vX - 40

	car1 := sc.AddVehicle("car-1", color.RGBA{R: 214, G: 69, B: 65, A: 255}, 1.0)
	err := appendAll(car1.Track,
		track.Waypoint{Pos: track.Point{X: 0, Y: laneEast}, Time: 0},
		track.Waypoint{Pos: track.Point{X: stopLine, Y: laneEast}, Time: 5, Dwell: 2},
		track.Waypoint{Pos: track.Point{X: w, Y: laneEast}, Time: 12},
	)
	if err != nil {
		return nil, err
	}

	car2 := sc.AddVehicle("car-2", color.RGBA{R: 65, G: 131, B: 215, A: 255}, 1.0)
	err = appendAll(car2.Track,
		track.Waypoint{Pos: track.Point{X: w, Y: laneWest}, Time: 0},
		track.Waypoint{Pos: track.Point{X: 0, Y: laneWest}, Time: 10},
	)
	if err != nil {
		return nil, err
	}

	bus := sc.AddVehicle("bus-1", color.RGBA{R: 240, G: 180, B: 60, A: 255}, 1.4)
	err = appendAll(bus.Track,
		track.Waypoint{Pos: track.Point{X: laneSouth, Y: 0}, Time: 1},
		track.Waypoint{Pos: track.Point{X: laneSouth, Y: hY - 40}, Time: 6, Dwell: 1.5},
		track.Waypoint{Pos: track.Point{X: laneSouth, Y: h}, Time: 13},
	)
	if err != nil {
		return nil, err
	}

	sc.AddCamera(vX-30, hY-30, 1.0)
	sc.Labels = append(sc.Labels, scene.TextLabel{
		Text: "demo intersection", X: 16, Y: 24, FontSize: 14, Color: "white",
	})

	return sc, nil
}

func appendAll(tr *track.Track, wps ...track.Waypoint) error {
	for _, wp := range wps {
		if err := tr.Append(wp); err != nil {
			return err
		}
	}
	return nil
}
