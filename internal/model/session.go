package model

// SessionKind identifies the exclusive UI context a player occupies.
type SessionKind string

const (
	SessionBank     SessionKind = "bank"
	SessionStore    SessionKind = "store"
	SessionDialogue SessionKind = "dialogue"
	SessionTrade    SessionKind = "trade"
	SessionDuel     SessionKind = "duel"
)

// InteractionSession is a player's current exclusive UI context.
// A player has at most one active session; opening a new one closes the prior.
type InteractionSession struct {
	Kind        SessionKind
	OwnerID     int64
	PeerID      int64 // 0 if unilateral
	OpenedAtTick int64
}
