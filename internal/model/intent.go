package model

// IntentKind identifies one of the six pending-intent state machines.
type IntentKind string

const (
	IntentAttack        IntentKind = "attack"
	IntentGather        IntentKind = "gather"
	IntentCook          IntentKind = "cook"
	IntentTrade         IntentKind = "trade"
	IntentDuelChallenge IntentKind = "duelChallenge"
	IntentFollow        IntentKind = "follow"
)

// PendingIntent records that a player has requested an action requiring
// prior movement. At most one exists per (kind, player).
type PendingIntent struct {
	Kind             IntentKind
	OwnerPlayerID    int64
	TargetID         int64
	LastPathedTile   Tile
	CreatedAtTick    int64
	MeleeRange       int32
	// AttackType selects melee (cardinal-only reach) vs. ranged/magic
	// (Chebyshev reach) terminal-tile selection; only meaningful for
	// IntentAttack, empty otherwise.
	AttackType string
	// Payload carries kind-specific data: fishSlot for cook (-1 = first raw
	// item), a stored callback for trade/duelChallenge, etc.
	Payload any
}

// IntentTimeoutTicks is the uniform pending-intent expiry (≈12s at 600ms/tick).
const IntentTimeoutTicks = 20
