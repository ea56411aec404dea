// Package render composites a scene into an RGBA frame for one instant of
// scenario time. Vehicle positions come from the trajectory sampler, so a
// frame rendered here matches what any other consumer of the sampler sees
// at the same time.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/traffic2video/internal/sampler"
	"github.com/ivlev/traffic2video/internal/scene"
	"github.com/ivlev/traffic2video/internal/system"
)

// Base sprite size in canvas units; multiplied by the vehicle's scale.
const (
	vehicleLength = 40.0
	vehicleWidth  = 20.0
	cameraSize    = 14.0
)

var (
	asphalt    = color.RGBA{R: 52, G: 56, B: 60, A: 255}
	laneMark   = color.RGBA{R: 222, G: 200, B: 80, A: 255}
	cameraBody = color.RGBA{R: 180, G: 186, B: 192, A: 255}
	pathMark   = color.RGBA{R: 90, G: 160, B: 220, A: 255}
)

// Renderer draws frames for one scene. It holds no per-frame state and may
// be shared by concurrent render workers.
type Renderer struct {
	Sampler sampler.Sampler

	// ShowPaths overlays waypoint markers, used by the preview but turned
	// off for export.
	ShowPaths bool

	qr image.Image
}

// New creates a renderer. A non-empty qrContent pre-renders a QR code that
// is stamped into the bottom-right corner of every frame.
func New(s sampler.Sampler, qrContent string) (*Renderer, error) {
	r := &Renderer{Sampler: s}
	if qrContent != "" {
		q, err := qrcode.New(qrContent, qrcode.Medium)
		if err != nil {
			return nil, err
		}
		r.qr = q.Image(96)
	}
	return r, nil
}

// Frame renders the scene at scenario time t into a pooled RGBA buffer.
// Release the buffer with Release once it has been consumed.
func (r *Renderer) Frame(sc *scene.Scene, t float64) *image.RGBA {
	img := system.GetImage(image.Rect(0, 0, sc.Width, sc.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(sc.Background), image.Point{}, draw.Src)

	for _, road := range sc.Roads {
		r.drawRoad(img, road)
	}
	for _, cam := range sc.Cameras {
		r.drawCamera(img, cam)
	}
	for _, v := range sc.Vehicles {
		if r.ShowPaths {
			r.drawPath(img, v)
		}
		pos, ok := r.Sampler.PositionAt(v.Track, t)
		if !ok {
			// Nothing to draw for this vehicle yet; never an error.
			continue
		}
		r.drawVehicle(img, v, pos.X, pos.Y)
	}
	for _, l := range sc.Labels {
		r.drawLabel(img, l)
	}

	if r.qr != nil {
		qb := r.qr.Bounds()
		target := image.Rect(sc.Width-qb.Dx()-12, sc.Height-qb.Dy()-12, sc.Width-12, sc.Height-12)
		draw.Draw(img, target, r.qr, qb.Min, draw.Over)
	}

	return img
}

// Release returns a frame buffer obtained from Frame to the pool.
func (r *Renderer) Release(img *image.RGBA) {
	system.PutImage(img)
}

func (r *Renderer) drawRoad(img *image.RGBA, road scene.Road) {
	fillRect(img, road.X, road.Y, road.Width, road.Height, asphalt)

	if road.Lanes < 2 {
		return
	}
	// Dashed divider between each pair of lanes, along the long axis.
	horizontal := road.Width >= road.Height
	for lane := 1; lane < road.Lanes; lane++ {
		if horizontal {
			y := road.Y + road.Height*float64(lane)/float64(road.Lanes)
			for x := road.X; x < road.X+road.Width; x += 24 {
				fillRect(img, x, y-1, 12, 2, laneMark)
			}
		} else {
			x := road.X + road.Width*float64(lane)/float64(road.Lanes)
			for y := road.Y; y < road.Y+road.Height; y += 24 {
				fillRect(img, x-1, y, 2, 12, laneMark)
			}
		}
	}
}

func (r *Renderer) drawVehicle(img *image.RGBA, v *scene.Vehicle, cx, cy float64) {
	w := vehicleLength * v.Scale
	h := vehicleWidth * v.Scale
	fillRect(img, cx-w/2, cy-h/2, w, h, v.Color)
	// Windshield stripe marks the front.
	fillRect(img, cx+w/2-w/5, cy-h/2+1, w/5, h-2, darken(v.Color))
}

func (r *Renderer) drawCamera(img *image.RGBA, cam scene.Camera) {
	size := cameraSize * cam.Scale
	fillRect(img, cam.X-size/2, cam.Y-size/2, size, size, cameraBody)
	fillRect(img, cam.X-size/6, cam.Y-size/6, size/3, size/3, color.RGBA{A: 255})
}

func (r *Renderer) drawPath(img *image.RGBA, v *scene.Vehicle) {
	for _, wp := range v.Track.Waypoints() {
		fillRect(img, wp.Pos.X-3, wp.Pos.Y-3, 6, 6, pathMark)
	}
}

func (r *Renderer) drawLabel(img *image.RGBA, l scene.TextLabel) {
	col := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if l.Color != "" && l.Color != "white" {
		col = namedColor(l.Color)
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(l.X), int(l.Y)),
	}
	d.DrawString(l.Text)
}

// fillRect fills an axis-aligned rectangle given in float canvas coordinates.
func fillRect(img *image.RGBA, x, y, w, h float64, c color.RGBA) {
	rect := image.Rect(int(x), int(y), int(x+w), int(y+h)).Intersect(img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

func darken(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}

func namedColor(name string) color.RGBA {
	switch name {
	case "black":
		return color.RGBA{A: 255}
	case "red":
		return color.RGBA{R: 220, G: 60, B: 60, A: 255}
	case "green":
		return color.RGBA{R: 70, G: 200, B: 110, A: 255}
	case "yellow":
		return color.RGBA{R: 230, G: 210, B: 80, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}
