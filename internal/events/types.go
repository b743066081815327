package events

// The payload types below are the internal world events the Event Bridge
// (spec §2.13/§4.12) maps to outgoing packets or to external collaborators.
// Kinds whose consumer is explicitly out of scope (combat/damage, resource
// processing — spec §1) are still emitted here so a future subscriber can
// be wired in without touching the emitting call site. Today the Event
// Bridge subscribes to every kind and only logs it.

// PlayerReady fires once a client has finished loading after onClientReady,
// ending the player's Loading window (spec §4.13).
type PlayerReady struct {
	PlayerID int64
}

// InventoryRequest asks the (external) inventory subsystem to push a fresh
// snapshot to the player, fired after every completed economic transaction
// (spec §4.9 step 5).
type InventoryRequest struct {
	PlayerID int64
}

// CombatAttackRequest is the terminal action of a fulfilled Attack pending
// intent (spec §4.4): consumed by the external combat/damage system.
type CombatAttackRequest struct {
	PlayerID   int64
	TargetID   int64
	AttackType string
}

// GatherBegin is the terminal action of a fulfilled Gather pending intent,
// consumed by the external resource-gathering subsystem.
type GatherBegin struct {
	PlayerID int64
	NodeID   int64
}

// CookingRequest is the terminal action of a fulfilled Cook pending intent.
// FishSlot of -1 means "first raw item in inventory" (spec §4.4).
type CookingRequest struct {
	PlayerID int64
	SourceID int64
	FishSlot int32
}
