package editor

import "github.com/Sambhram1/tele-bot/core/telegram/state"

// Editing conversation states. The session is in exactly one of these (or
// state.StateIdle) at any time.
const (
	StateAwaitingText       state.State = "awaiting_text"
	StateAwaitingDimensions state.State = "awaiting_dimensions"
	StateAwaitingRotation   state.State = "awaiting_rotation"
)
