package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/pthm-cable/sphtank/sph"
)

// gravityStep is the change per Up/Down key press, in px/s^2.
const gravityStep = 50

// Viewer runs a simulation in the terminal. Left mouse pushes fluid away from the
// cursor, right mouse pulls it in; Space pauses, r resets, n steps once, Up/Down
// change gravity and q or Esc quits.
type Viewer struct {
	Sim      *sph.Simulation
	Params   sph.Params
	Setup    sph.Setup
	Substeps int

	// Interaction tuning, taken from config
	Radius, Strength, Response float64

	paused   bool
	stepOnce bool
	push     float64 // +1 push, -1 pull, 0 idle
	cursorX  int
	cursorY  int
	status   string
}

type attrFunc func(level float64) (termbox.Attribute, termbox.Attribute)

// levelAttr colours a cell from its fill fraction.
func levelAttr(level float64) (termbox.Attribute, termbox.Attribute) {
	switch {
	case level > 0.66:
		return termbox.ColorWhite | termbox.AttrBold, termbox.ColorDefault
	case level > 0.33:
		return termbox.ColorCyan, termbox.ColorDefault
	default:
		return termbox.ColorBlue, termbox.ColorDefault
	}
}

// Run takes over the terminal until ctx is cancelled or the user quits.
func (v *Viewer) Run(ctx context.Context, fps int) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initialising terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	if v.Substeps < 1 {
		v.Substeps = 1
	}
	if fps < 1 {
		fps = 30
	}

	events := make(chan termbox.Event, 16)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			select {
			case events <- ev:
			default: // viewer is behind; drop input
			}
		}
	}()
	defer termbox.Interrupt()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit, err := v.handle(ev); quit || err != nil {
				return err
			}
		case <-ticker.C:
			v.advance()
			v.redraw(levelAttr)
		}
	}
}

// handle applies one input event. It reports whether the viewer should exit.
func (v *Viewer) handle(ev termbox.Event) (bool, error) {
	switch ev.Type {
	case termbox.EventKey:
		switch {
		case ev.Key == termbox.KeyEsc || ev.Ch == 'q':
			return true, nil
		case ev.Key == termbox.KeySpace:
			v.paused = !v.paused
		case ev.Ch == 'n':
			v.stepOnce = true
		case ev.Ch == 'r':
			if err := v.Sim.Reset(v.Params, v.Setup); err != nil {
				return true, err
			}
		case ev.Key == termbox.KeyArrowUp:
			v.Params.Gravity += gravityStep
		case ev.Key == termbox.KeyArrowDown:
			v.Params.Gravity -= gravityStep
		}
	case termbox.EventMouse:
		v.cursorX, v.cursorY = ev.MouseX, ev.MouseY
		switch ev.Key {
		case termbox.MouseLeft:
			v.push = 1
		case termbox.MouseRight:
			v.push = -1
		case termbox.MouseRelease:
			v.push = 0
		}
	case termbox.EventError:
		return true, ev.Err
	}
	return false, nil
}

// interaction converts the mouse state into a force descriptor. Row 0 is the status
// line, so the tank occupies rows 1..h-1.
func (v *Viewer) interaction() sph.Interaction {
	if v.push == 0 {
		return sph.Interaction{}
	}
	w, h := termbox.Size()
	if h < 2 || v.cursorY < 1 {
		return sph.Interaction{}
	}
	return sph.Interaction{
		Pos:      CellCenter(v.cursorX, v.cursorY-1, w, h-1, v.Params.Tank),
		Radius:   v.Radius,
		Strength: v.push * v.Strength,
		Response: v.Response,
	}
}

func (v *Viewer) advance() {
	if v.paused && !v.stepOnce {
		return
	}
	v.stepOnce = false
	in := v.interaction()
	var guards int
	for i := 0; i < v.Substeps; i++ {
		guards += v.Sim.Step(v.Params, in).Guards
	}
	v.status = fmt.Sprintf("tick %d  t=%.2fs  n=%d  gravity %.0f  guards %d",
		v.Sim.Tick(), v.Sim.Time(), v.Sim.Len(), v.Params.Gravity, guards)
	if v.paused {
		v.status += "  [paused]"
	}
}

func (v *Viewer) redraw(attr attrFunc) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	w, h := termbox.Size()

	for x, r := range v.status {
		if x >= w {
			break
		}
		termbox.SetCell(x, 0, r, termbox.ColorYellow, termbox.ColorDefault)
	}

	if h > 1 {
		grid := Rasterize(v.Sim.Particles.Position, v.Params.Tank, w, h-1)
		for y := 0; y < grid.Rows; y++ {
			for x := 0; x < grid.Cols; x++ {
				fg, bg := attr(grid.Level(x, y))
				termbox.SetCell(x, y+1, grid.Glyph(x, y), fg, bg)
			}
		}
	}
	termbox.Flush()
}
