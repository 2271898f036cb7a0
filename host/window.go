package host

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zerotri/zero/internal/buildinfo"
)

// WindowConfig controls the windowed runner.
type WindowConfig struct {
	Title string
	Scale int
	TPS   int
}

// RunWindow opens a desktop window that presents the framebuffer and steps
// the application once per frame. Time advances by exactly 1/TPS per frame.
// It blocks until the window closes.
func RunWindow(cfg WindowConfig, fb *Framebuffer, step StepFunc) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	title := cfg.Title
	if title == "" {
		title = "zero"
	}

	g := &hostGame{fb: fb, step: step, dt: 1.0 / float64(cfg.TPS)}
	ebiten.SetWindowTitle(title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(fb.Width()*cfg.Scale, fb.Height()*cfg.Scale)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(g)
}

type hostGame struct {
	fb      *Framebuffer
	step    StepFunc
	dt      float64
	tick    uint64
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	if g.step != nil {
		if err := g.step(float64(g.tick) * g.dt); err != nil {
			return err
		}
	}
	g.tick++
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.Width() || g.img.Bounds().Dy() != fb.Height() {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.Width(), fb.Height()))
		g.scratch = make([]byte, fb.size())
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.Width(), fb.Height())
	}

	fb.SnapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width(), g.fb.Height()
}
