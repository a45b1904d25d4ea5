// Package overlay draws the face mesh and caption bubbles onto an
// offscreen 2-D surface, once per frame.
package overlay

import (
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/caption"
	"github.com/normanking/captionmesh/internal/landmark"
	"github.com/normanking/captionmesh/internal/track"
)

// Config configures the renderer surface and styling.
type Config struct {
	Width  int
	Height int
	// Mirror flips the surface horizontally for a natural selfie view.
	// Caption glyphs are counter-mirrored so they stay readable.
	Mirror      bool
	MeshOpacity float64
	Bubble      BubbleStyle
	FontPath    string // TTF path; empty uses the built-in face
	FontSize    float64
}

// DefaultConfig returns the reference renderer configuration.
func DefaultConfig() Config {
	return Config{
		Width:       1280,
		Height:      720,
		Mirror:      true,
		MeshOpacity: 0.25,
		Bubble:      DefaultBubbleStyle(),
		FontSize:    14,
	}
}

// Renderer owns the drawing surface. It is driven by the single
// processing goroutine; the surface is cleared and fully repainted on
// every Render call, so identical inputs produce identical pixels.
type Renderer struct {
	cfg    Config
	dc     *gg.Context
	logger zerolog.Logger
}

// NewRenderer creates a renderer with its offscreen surface.
func NewRenderer(cfg Config, logger zerolog.Logger) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", cfg.Width, cfg.Height)
	}

	dc := gg.NewContext(cfg.Width, cfg.Height)
	if cfg.FontPath != "" {
		if err := dc.LoadFontFace(cfg.FontPath, cfg.FontSize); err != nil {
			return nil, fmt.Errorf("load font %s: %w", cfg.FontPath, err)
		}
	}

	return &Renderer{
		cfg:    cfg,
		dc:     dc,
		logger: logger.With().Str("component", "overlay").Logger(),
	}, nil
}

// Render repaints the surface for one frame: mesh and anchor marker
// for every record, plus a caption bubble per face when the caption
// text is non-empty. The active face gets the stronger styling.
func (r *Renderer) Render(records []track.FaceRecord, activeID int, hasActive bool, snapshot caption.Caption) {
	dc := r.dc

	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	dc.Push()
	if r.cfg.Mirror {
		dc.ScaleAbout(-1, 1, float64(r.cfg.Width)/2, float64(r.cfg.Height)/2)
	}

	for _, rec := range records {
		active := hasActive && rec.ID == activeID
		r.drawMesh(rec.Landmarks, active)
		r.drawAnchor(rec.Landmarks, active)
	}

	if strings.TrimSpace(snapshot.Text) != "" {
		for _, rec := range records {
			active := hasActive && rec.ID == activeID
			r.drawCaption(rec.Landmarks, snapshot.Text, active)
		}
	}

	dc.Pop()
}

// Image returns the rendered surface.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// SavePNG writes the current surface to path.
func (r *Renderer) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

func (r *Renderer) toPixel(p landmark.Point) (float64, float64) {
	return p.X() * float64(r.cfg.Width), p.Y() * float64(r.cfg.Height)
}

// drawMesh draws the landmark point cloud and the per-feature contour
// groups at low opacity.
func (r *Renderer) drawMesh(set landmark.Set, active bool) {
	dc := r.dc

	opacity := r.cfg.MeshOpacity
	if !active {
		opacity *= 0.6
	}

	dc.SetRGBA(0.55, 0.95, 0.8, opacity)
	for _, p := range set {
		x, y := r.toPixel(p)
		dc.DrawPoint(x, y, 1)
	}
	dc.Fill()

	dc.SetRGBA(0.55, 0.95, 0.8, opacity)
	dc.SetLineWidth(1)
	for _, contour := range landmark.Contours {
		r.strokeContour(set, contour)
	}
}

func (r *Renderer) strokeContour(set landmark.Set, contour landmark.Contour) {
	dc := r.dc

	started := false
	for _, idx := range contour.Indices {
		p, ok := set.At(idx)
		if !ok {
			continue
		}
		x, y := r.toPixel(p)
		if !started {
			dc.MoveTo(x, y)
			started = true
			continue
		}
		dc.LineTo(x, y)
	}
	if !started {
		return
	}
	if contour.Closed {
		dc.ClosePath()
	}
	dc.Stroke()
}

// drawAnchor marks the forehead landmark; the active face gets a
// brighter marker with a glow ring.
func (r *Renderer) drawAnchor(set landmark.Set, active bool) {
	dc := r.dc

	anchor, ok := set.At(landmark.AnchorIndex)
	if !ok {
		return
	}
	x, y := r.toPixel(anchor)

	if active {
		dc.SetRGBA(0.2, 1, 0.6, 0.3)
		dc.DrawPoint(x, y, 10)
		dc.Fill()
		dc.SetRGBA(0.2, 1, 0.6, 0.95)
		dc.DrawPoint(x, y, 5)
		dc.Fill()
		return
	}

	dc.SetRGBA(1, 1, 1, 0.4)
	dc.DrawPoint(x, y, 4)
	dc.Fill()
}

// drawCaption lays out and draws one caption bubble above the face's
// anchor landmark, as a single filled rounded-rect-plus-tail shape.
func (r *Renderer) drawCaption(set landmark.Set, text string, active bool) {
	dc := r.dc

	anchor, ok := set.At(landmark.AnchorIndex)
	if !ok {
		return
	}
	ax, ay := r.toPixel(anchor)

	style := r.cfg.Bubble
	layout := LayoutBubble(text, style, func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	})
	if len(layout.Lines) == 0 {
		return
	}

	bx := ax - layout.Width/2
	by := ay - style.TailHeight - layout.Height

	r.bubblePath(bx, by, layout.Width, layout.Height, style.CornerR, ax, style.TailWidth, style.TailHeight)
	if active {
		dc.SetRGBA(0.05, 0.05, 0.08, 0.8)
		dc.FillPreserve()
		dc.SetRGBA(0.2, 1, 0.6, 0.5)
		dc.SetLineWidth(2)
		dc.Stroke()
	} else {
		dc.SetRGBA(0.05, 0.05, 0.08, 0.4)
		dc.Fill()
	}

	textAlpha := 1.0
	if !active {
		textAlpha = 0.55
	}
	dc.SetRGBA(1, 1, 1, textAlpha)

	textTop := by + (layout.Height-style.LineHeight*float64(len(layout.Lines)))/2
	for i, line := range layout.Lines {
		ly := textTop + (float64(i)+0.5)*style.LineHeight
		if r.cfg.Mirror {
			// Counter-mirror so glyphs are not flipped while the mesh
			// geometry stays mirrored.
			dc.Push()
			dc.ScaleAbout(-1, 1, ax, ly)
			dc.DrawStringAnchored(line, ax, ly, 0.5, 0.5)
			dc.Pop()
			continue
		}
		dc.DrawStringAnchored(line, ax, ly, 0.5, 0.5)
	}
}

// bubblePath traces the bubble outline: rounded rectangle with a
// downward tail whose tip touches the anchor, as one continuous path.
func (r *Renderer) bubblePath(x, y, w, h, cr, tailX, tailW, tailH float64) {
	dc := r.dc

	dc.NewSubPath()
	dc.MoveTo(x+cr, y)
	dc.LineTo(x+w-cr, y)
	dc.QuadraticTo(x+w, y, x+w, y+cr)
	dc.LineTo(x+w, y+h-cr)
	dc.QuadraticTo(x+w, y+h, x+w-cr, y+h)
	dc.LineTo(tailX+tailW/2, y+h)
	dc.LineTo(tailX, y+h+tailH)
	dc.LineTo(tailX-tailW/2, y+h)
	dc.LineTo(x+cr, y+h)
	dc.QuadraticTo(x, y+h, x, y+h-cr)
	dc.LineTo(x, y+cr)
	dc.QuadraticTo(x, y, x+cr, y)
	dc.ClosePath()
}
