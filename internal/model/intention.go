package model

// Intention represents AI state for NPCs
type Intention int32

const (
	// IntentionIdle - NPC is standing idle
	IntentionIdle Intention = iota
	// IntentionRoam - NPC is wandering around its spawn point
	IntentionRoam
	// IntentionMoveTo - NPC is moving to a specific location
	IntentionMoveTo
	// IntentionReturn - NPC is walking back to its spawn point
	IntentionReturn
)

// String returns human-readable intention name
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionRoam:
		return "ROAM"
	case IntentionMoveTo:
		return "MOVE_TO"
	case IntentionReturn:
		return "RETURN"
	default:
		return "UNKNOWN"
	}
}
