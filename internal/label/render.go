package label

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"pianoclips/internal/config"
)

// Anchor placements.
const (
	// AnchorOrigin puts the top-left corner of the text box at the canvas centre.
	AnchorOrigin = "origin"
	// AnchorCenter centres the text box on the canvas.
	AnchorCenter = "center"
)

// Options configures a Renderer.
type Options struct {
	Width      int
	Height     int
	FontPath   string
	FontSize   float64
	Background color.RGBA
	Text       color.RGBA
	Anchor     string
}

// OptionsFromConfig converts the image section of the configuration.
func OptionsFromConfig(cfg config.Image) (Options, error) {
	bg, err := config.ParseColor(cfg.Background)
	if err != nil {
		return Options{}, fmt.Errorf("background: %w", err)
	}
	fg, err := config.ParseColor(cfg.TextColor)
	if err != nil {
		return Options{}, fmt.Errorf("text colour: %w", err)
	}
	return Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		FontPath:   cfg.FontPath,
		FontSize:   cfg.FontSize,
		Background: bg,
		Text:       fg,
		Anchor:     cfg.Anchor,
	}, nil
}

// Renderer draws label images. It is safe for concurrent use.
type Renderer struct {
	opts Options
	font *opentype.Font
}

// NewRenderer parses the configured font (Go Regular when FontPath is empty).
func NewRenderer(opts Options) (*Renderer, error) {
	data := goregular.TTF
	if opts.FontPath != "" {
		var err error
		data, err = os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if opts.Anchor == "" {
		opts.Anchor = AnchorOrigin
	}
	return &Renderer{opts: opts, font: parsed}, nil
}

// Render draws text and returns the image.
func (r *Renderer) Render(text string) (*image.RGBA, error) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    r.opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)

	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(r.opts.Text), Face: face}
	bounds, _ := drawer.BoundString(text)
	drawer.Dot = r.dot(bounds, face.Metrics())
	drawer.DrawString(text)
	return img, nil
}

// dot returns the baseline origin for the configured anchor. The text box
// spans from the ascent line to the descent line, horizontally over the ink
// bounds.
func (r *Renderer) dot(bounds fixed.Rectangle26_6, metrics font.Metrics) fixed.Point26_6 {
	cx := fixed.I(r.opts.Width / 2)
	cy := fixed.I(r.opts.Height / 2)
	switch r.opts.Anchor {
	case AnchorCenter:
		width := bounds.Max.X - bounds.Min.X
		height := metrics.Ascent + metrics.Descent
		return fixed.Point26_6{
			X: cx - width/2 - bounds.Min.X,
			Y: cy - height/2 + metrics.Ascent,
		}
	default:
		return fixed.Point26_6{X: cx, Y: cy + metrics.Ascent}
	}
}

// Encode renders text as PNG to w.
func (r *Renderer) Encode(w io.Writer, text string) error {
	img, err := r.Render(text)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
