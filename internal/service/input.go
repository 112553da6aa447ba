package service

import "sync"

// Input exposes polled controller state by logical name.
type Input interface {
	Action(name string) bool
	Axis(name string) float64
}

// StaticInput is an Input whose state is set directly. The terminal viewer
// feeds key presses into it; tests script it.
type StaticInput struct {
	mu      sync.Mutex
	actions map[string]bool
	pulses  map[string]bool
	axes    map[string]float64
}

func NewStaticInput() *StaticInput {
	return &StaticInput{
		actions: make(map[string]bool),
		pulses:  make(map[string]bool),
		axes:    make(map[string]float64),
	}
}

// Action reports whether name is held or was pulsed since the last read.
func (in *StaticInput) Action(name string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.pulses[name] {
		delete(in.pulses, name)
		return true
	}
	return in.actions[name]
}

func (in *StaticInput) Axis(name string) float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.axes[name]
}

// Pulse makes the next Action(name) read true once. Terminals report key
// presses without releases, so the viewer feeds one-shot actions this way.
func (in *StaticInput) Pulse(name string) {
	in.mu.Lock()
	in.pulses[name] = true
	in.mu.Unlock()
}

func (in *StaticInput) SetAction(name string, on bool) {
	in.mu.Lock()
	in.actions[name] = on
	in.mu.Unlock()
}

// SetAxis clamps v to [-1, 1].
func (in *StaticInput) SetAxis(name string, v float64) {
	v = max(-1, min(1, v))
	in.mu.Lock()
	in.axes[name] = v
	in.mu.Unlock()
}

// Reset clears all actions and axes.
func (in *StaticInput) Reset() {
	in.mu.Lock()
	clear(in.actions)
	clear(in.pulses)
	clear(in.axes)
	in.mu.Unlock()
}
