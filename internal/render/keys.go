package render

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/sim2d/internal/service"
	"github.com/l1jgo/sim2d/internal/system"
)

// ErrQuit is returned by PollKeys when the user asks to leave.
var ErrQuit = errors.New("quit requested")

// PollKeys feeds key presses into in until ctx is done or Esc, q or Ctrl-C is
// pressed. Arrows and a/d steer, s stops, space jumps.
func (v *Viewer) PollKeys(ctx context.Context, in *service.StaticInput) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return ctx.Err() // screen finalized
		}
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if quit := applyKey(ev, in); quit {
				return ErrQuit
			}
		}
	}
}

func applyKey(ev *tcell.EventKey, in *service.StaticInput) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		in.SetAxis(system.AxisHorizontal, -1)
	case tcell.KeyRight:
		in.SetAxis(system.AxisHorizontal, 1)
	case tcell.KeyDown:
		in.SetAxis(system.AxisHorizontal, 0)
	case tcell.KeyUp:
		in.Pulse(system.ActionJump)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'a':
			in.SetAxis(system.AxisHorizontal, -1)
		case 'd':
			in.SetAxis(system.AxisHorizontal, 1)
		case 's':
			in.SetAxis(system.AxisHorizontal, 0)
		case ' ', 'w':
			in.Pulse(system.ActionJump)
		}
	}
	return false
}
