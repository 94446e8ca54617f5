// Package state provides a lightweight FSM/session manager for Telegram bots.
// Each session tracks a single conversation state and owns at most one
// releasable resource; the package stays domain-agnostic so bots define their
// own states and resource types.
package state
