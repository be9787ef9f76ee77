package ai

import "github.com/udisondev/dolgo/internal/model"

// Controller drives a single NPC from the tick loop.
type Controller interface {
	Start()
	Stop()

	SetIntention(intention model.Intention)
	CurrentIntention() model.Intention

	// Tick advances the controller by one tick interval.
	Tick()
}
