// Package project serializes scenes to and from project files. Both JSON
// and YAML are supported, chosen by file extension; the two encodings share
// one document shape, and load(save(scene)) reproduces every trajectory
// triple exactly.
package project

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/traffic2video/internal/scene"
	"github.com/ivlev/traffic2video/internal/track"
)

// Document is the on-disk project shape.
type Document struct {
	Name     string       `json:"name" yaml:"name"`
	Width    int          `json:"width" yaml:"width" validate:"gt=0"`
	Height   int          `json:"height" yaml:"height" validate:"gt=0"`
	Roads    []RoadRec    `json:"roads" yaml:"roads" validate:"dive"`
	Vehicles []VehicleRec `json:"vehicles" yaml:"vehicles" validate:"dive"`
	Cameras  []CameraRec  `json:"cameras" yaml:"cameras" validate:"dive"`
	Labels   []LabelRec   `json:"text_labels" yaml:"text_labels" validate:"dive"`
}

// WaypointRec is one trajectory record: arrival timestamp, canvas position
// and dwell (pause) duration, all in seconds and canvas units.
type WaypointRec struct {
	Timestamp float64    `json:"timestamp" yaml:"timestamp" validate:"gte=0"`
	Position  [2]float64 `json:"position" yaml:"position,flow"`
	Dwell     float64    `json:"dwell_duration" yaml:"dwell_duration" validate:"gte=0"`
}

type VehicleRec struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Color      string        `json:"color" yaml:"color"`
	Scale      float64       `json:"scale" yaml:"scale" validate:"gte=0"`
	Trajectory []WaypointRec `json:"trajectory" yaml:"trajectory" validate:"dive"`
}

type RoadRec struct {
	ID     string  `json:"id" yaml:"id"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width" validate:"gte=0"`
	Height float64 `json:"height" yaml:"height" validate:"gte=0"`
	Lanes  int     `json:"lanes" yaml:"lanes" validate:"gte=0"`
	Locked bool    `json:"locked" yaml:"locked"`
}

type CameraRec struct {
	ID    string  `json:"id" yaml:"id"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Scale float64 `json:"scale" yaml:"scale" validate:"gte=0"`
}

type LabelRec struct {
	Text     string  `json:"text" yaml:"text"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	FontSize int     `json:"font_size" yaml:"font_size" validate:"gte=0"`
	Color    string  `json:"color" yaml:"color"`
}

var validate = validator.New()

// Save writes the scene to path. ".yaml"/".yml" selects YAML, anything else
// is written as indented JSON.
func Save(sc *scene.Scene, path string) error {
	doc := FromScene(sc)

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project file and rebuilds the scene. A vehicle whose
// trajectory fails the ordering check is skipped and reported in warnings;
// the rest of the scene loads normally so one bad track never blocks the
// others.
func Load(path string) (*scene.Scene, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var doc Document
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode project %s: %w", filepath.Base(path), err)
	}

	if err := validate.Struct(&doc); err != nil {
		return nil, nil, fmt.Errorf("invalid project %s: %w", filepath.Base(path), err)
	}

	return ToScene(&doc)
}

// FromScene converts a scene into its document form.
func FromScene(sc *scene.Scene) *Document {
	doc := &Document{
		Name:   sc.Name,
		Width:  sc.Width,
		Height: sc.Height,
	}
	for _, r := range sc.Roads {
		doc.Roads = append(doc.Roads, RoadRec{
			ID: r.ID, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			Lanes: r.Lanes, Locked: r.Locked,
		})
	}
	for _, v := range sc.Vehicles {
		rec := VehicleRec{
			ID:    v.ID,
			Name:  v.Name,
			Color: formatColor(v.Color),
			Scale: v.Scale,
		}
		for _, wp := range v.Track.Waypoints() {
			rec.Trajectory = append(rec.Trajectory, WaypointRec{
				Timestamp: wp.Time,
				Position:  [2]float64{wp.Pos.X, wp.Pos.Y},
				Dwell:     wp.Dwell,
			})
		}
		doc.Vehicles = append(doc.Vehicles, rec)
	}
	for _, c := range sc.Cameras {
		doc.Cameras = append(doc.Cameras, CameraRec{ID: c.ID, X: c.X, Y: c.Y, Scale: c.Scale})
	}
	for _, l := range sc.Labels {
		doc.Labels = append(doc.Labels, LabelRec{
			Text: l.Text, X: l.X, Y: l.Y, FontSize: l.FontSize, Color: l.Color,
		})
	}
	return doc
}

// ToScene rebuilds a scene from its document form. Trajectories are replayed
// through track.Track's public API so the ordering invariant is re-checked
// on load.
func ToScene(doc *Document) (*scene.Scene, []error, error) {
	sc := scene.New(doc.Name, doc.Width, doc.Height)
	for _, r := range doc.Roads {
		sc.Roads = append(sc.Roads, scene.Road{
			ID: r.ID, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			Lanes: r.Lanes, Locked: r.Locked,
		})
	}

	var warnings []error
	for _, rec := range doc.Vehicles {
		tr := &track.Track{}
		bad := false
		for _, wp := range rec.Trajectory {
			err := tr.Append(track.Waypoint{
				Pos:   track.Point{X: wp.Position[0], Y: wp.Position[1]},
				Time:  wp.Timestamp,
				Dwell: wp.Dwell,
			})
			if err != nil {
				warnings = append(warnings, fmt.Errorf("vehicle %q: %w", rec.Name, err))
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		scale := rec.Scale
		if scale == 0 {
			scale = 1.0
		}
		sc.Vehicles = append(sc.Vehicles, &scene.Vehicle{
			ID:    rec.ID,
			Name:  rec.Name,
			Color: parseColor(rec.Color),
			Scale: scale,
			Track: tr,
		})
	}

	for _, c := range doc.Cameras {
		sc.Cameras = append(sc.Cameras, scene.Camera{ID: c.ID, X: c.X, Y: c.Y, Scale: c.Scale})
	}
	for _, l := range doc.Labels {
		sc.Labels = append(sc.Labels, scene.TextLabel{
			Text: l.Text, X: l.X, Y: l.Y, FontSize: l.FontSize, Color: l.Color,
		})
	}
	return sc, warnings, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// formatColor renders a color as "#rrggbb".
func formatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseColor reads "#rrggbb"; unknown input falls back to white.
func parseColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
