// Package app is the demo application: a handful of jobs exercising the
// scheduler (a per-tick frame counter, a once-per-second auditor, a timed
// pulse and a pooled counter-group round), with their stats drawn onto the
// host framebuffer.
package app

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/zerotri/zero/host"
	"github.com/zerotri/zero/jobs"
)

const groupSize = 10

type App struct {
	w  *jobs.Worker
	fb *host.Framebuffer

	frames  int // bumped by the frame-counter job every tick
	rate    int // frames seen in the last audited second
	pulseOn bool
	round   int // completed group rounds
}

// New seeds the demo jobs on w and returns the per-tick step function.
func New(w *jobs.Worker, fb *host.Framebuffer) func(now float64) error {
	a := &App{w: w, fb: fb}
	w.Create(a.frameCounter, nil)
	w.Create(a.auditor, nil)
	w.Create(a.pulse, nil)
	w.Create(a.groupSpawner, nil)
	return a.step
}

func (a *App) step(now float64) error {
	a.w.Tick(now)
	if a.fb != nil {
		a.draw(now)
	}
	return nil
}

func (a *App) frameCounter(w *jobs.Worker, _ any) any {
	for {
		w.Yield()
		a.frames++
	}
}

func (a *App) auditor(w *jobs.Worker, _ any) any {
	for {
		w.Wait(1.0)
		a.rate = a.frames
		a.frames = 0
	}
}

func (a *App) pulse(w *jobs.Worker, _ any) any {
	for {
		w.Wait(0.5)
		a.pulseOn = !a.pulseOn
	}
}

// groupSpawner claims a batch of pooled children sharing one counter, waits
// for the group to drain, then rests before the next round.
func (a *App) groupSpawner(w *jobs.Worker, _ any) any {
	for {
		c := jobs.NewCounter()
		for i := 0; i < groupSize; i++ {
			if w.ClaimSmall(groupChild, i, c) == nil {
				break
			}
		}
		w.WaitOnCounter(c)
		a.round++
		w.Wait(2.0)
	}
}

func groupChild(w *jobs.Worker, data any) any {
	w.Yield()
	return data
}

func (a *App) draw(now float64) {
	a.fb.ClearRGB(12, 12, 24)

	if a.pulseOn {
		a.fb.FillRect(a.fb.Width()-28, 8, 20, 20, 0x07E0)
	} else {
		a.fb.FillRect(a.fb.Width()-28, 8, 20, 20, 0x2104)
	}

	lines := []string{
		fmt.Sprintf("t     %7.2fs", now),
		fmt.Sprintf("rate  %d ticks/s", a.rate),
		fmt.Sprintf("round %d", a.round),
	}
	if p := a.w.Pools(); p != nil {
		lines = append(lines,
			fmt.Sprintf("small %d/%d free", p.SmallFree(), p.Small().Count()),
			fmt.Sprintf("large %d/%d free", p.LargeFree(), p.Large().Count()),
		)
	}

	d := host.Display{FB: a.fb}
	white := color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	y := int16(16)
	for _, s := range lines {
		tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 8, y, s, white)
		y += 12
	}
}
