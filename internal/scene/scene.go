package scene

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"

	"github.com/ivlev/traffic2video/internal/track"
)

// Vehicle is a moving scene entity. Its motion is defined entirely by its
// waypoint track; the vehicle owns the track for its whole lifetime.
type Vehicle struct {
	ID    string
	Name  string
	Color color.RGBA
	Scale float64
	Track *track.Track
}

// Road is a static lane strip on the canvas.
type Road struct {
	ID     string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Lanes  int
	Locked bool
}

// Camera is a static camera marker placed by the author.
type Camera struct {
	ID    string
	X     float64
	Y     float64
	Scale float64
}

// TextLabel is a static caption on the canvas.
type TextLabel struct {
	Text     string
	X        float64
	Y        float64
	FontSize int
	Color    string
}

// Scene is the scenario document: canvas geometry plus every authored
// entity. It is passed explicitly to operations rather than held as global
// state, so multiple documents can coexist.
type Scene struct {
	Name       string
	Width      int
	Height     int
	Background color.RGBA

	Roads    []Road
	Vehicles []*Vehicle
	Cameras  []Camera
	Labels   []TextLabel
}

// New creates an empty scene with the given canvas size.
func New(name string, width, height int) *Scene {
	return &Scene{
		Name:       name,
		Width:      width,
		Height:     height,
		Background: color.RGBA{R: 34, G: 40, B: 42, A: 255},
	}
}

// AddVehicle places a new vehicle with an empty track and returns it.
func (s *Scene) AddVehicle(name string, c color.RGBA, scale float64) *Vehicle {
	if scale <= 0 {
		scale = 1.0
	}
	v := &Vehicle{
		ID:    uuid.NewString(),
		Name:  name,
		Color: c,
		Scale: scale,
		Track: &track.Track{},
	}
	s.Vehicles = append(s.Vehicles, v)
	return v
}

// RemoveVehicle deletes the vehicle with the given id and its track.
func (s *Scene) RemoveVehicle(id string) error {
	for i, v := range s.Vehicles {
		if v.ID == id {
			s.Vehicles = append(s.Vehicles[:i], s.Vehicles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("vehicle %q not found", id)
}

// VehicleByID looks up a vehicle.
func (s *Scene) VehicleByID(id string) (*Vehicle, bool) {
	for _, v := range s.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

// AddCamera places a camera marker and returns it.
func (s *Scene) AddCamera(x, y, scale float64) Camera {
	if scale <= 0 {
		scale = 1.0
	}
	cam := Camera{ID: uuid.NewString(), X: x, Y: y, Scale: scale}
	s.Cameras = append(s.Cameras, cam)
	return cam
}

// Duration returns the scenario length: the longest vehicle path duration.
func (s *Scene) Duration() float64 {
	max := 0.0
	for _, v := range s.Vehicles {
		if v.Track == nil {
			continue
		}
		if d := v.Track.TotalDuration(); d > max {
			max = d
		}
	}
	return max
}
