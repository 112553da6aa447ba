// Package service holds the collaborators the simulation talks to but does
// not own. Everything is injected through Services; there are no globals.
package service

// Services bundles the collaborators handed to a scene.
type Services struct {
	Audio  Audio
	Assets *Assets
	Input  Input
}

// Headless returns silent audio, an empty asset registry and idle input.
func Headless() Services {
	return Services{
		Audio:  NopAudio{},
		Assets: NewAssets(),
		Input:  NewStaticInput(),
	}
}
