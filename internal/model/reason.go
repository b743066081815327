package model

// Reason is a business-rule refusal code sent to clients as {errorCode: Reason}.
// Using a named string type rather than raw strings keeps refusal sites
// exhaustively greppable and testable, per the design's call for a Reason enum.
type Reason string

const (
	ReasonPlayerOffline    Reason = "PLAYER_OFFLINE"
	ReasonPlayerBusy       Reason = "PLAYER_BUSY"
	ReasonTooFar           Reason = "TOO_FAR"
	ReasonInterfaceOpen    Reason = "INTERFACE_OPEN"
	ReasonRateLimited      Reason = "RATE_LIMITED"
	ReasonNotInTrade       Reason = "NOT_IN_TRADE"
	ReasonItemChanged      Reason = "ITEM_CHANGED"
	ReasonUntradeableItem  Reason = "UNTRADEABLE_ITEM"
	ReasonInvFullInitiator Reason = "INVENTORY_FULL_INITIATOR"
	ReasonInvFullRecipient Reason = "INVENTORY_FULL_RECIPIENT"
	ReasonServerError      Reason = "server_error"

	ReasonInterruptedByCombat   Reason = "Interrupted by combat"
	ReasonInterruptedByMovement Reason = "Interrupted by movement"
)
