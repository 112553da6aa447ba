package service

import "sync"

// Audio triggers sounds by name. The simulation never reads audio state back.
type Audio interface {
	Play(name string, volume float64)
}

// NopAudio discards every request.
type NopAudio struct{}

func (NopAudio) Play(string, float64) {}

// Sound is one recorded Play call.
type Sound struct {
	Name   string
	Volume float64
}

// RecordingAudio keeps every Play call, for tests and headless runs.
type RecordingAudio struct {
	mu     sync.Mutex
	played []Sound
}

func (a *RecordingAudio) Play(name string, volume float64) {
	a.mu.Lock()
	a.played = append(a.played, Sound{Name: name, Volume: volume})
	a.mu.Unlock()
}

// Played returns a copy of the calls so far.
func (a *RecordingAudio) Played() []Sound {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Sound(nil), a.played...)
}
