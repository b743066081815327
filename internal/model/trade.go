package model

// MaxTradeQuantity is the upper bound on a single trade/stake offer quantity
// (spec §7 validation: "quantity ≤ 0 or > 10 000" is rejected at the boundary).
const MaxTradeQuantity = 10000

// ValidQuantity reports whether qty is in the valid (0, MaxTradeQuantity] range.
func ValidQuantity(qty int64) bool {
	return qty > 0 && qty <= MaxTradeQuantity
}

// TradeStatus is the lifecycle stage of a Trade Session.
type TradeStatus string

const (
	TradeActive     TradeStatus = "active"
	TradeConfirming TradeStatus = "confirming"
	TradeCompleted  TradeStatus = "completed"
	TradeCancelled  TradeStatus = "cancelled"
)

// TradeOffer is one participant's offered items in a trade.
type TradeOffer struct {
	PlayerID      int64
	OfferedItems  []TradeSlotItem
	Accepted      bool
}

// TradeSlotItem links a trade-screen slot to the participant's inventory slot.
type TradeSlotItem struct {
	InventorySlot int32
	ItemID        int32
	Quantity      int64
	TradeSlot     int32
}

// TradeSession is a bilateral trade negotiation.
type TradeSession struct {
	ID          string
	Initiator   TradeOffer
	Recipient   TradeOffer
	Status      TradeStatus
}

// ResetAcceptance clears both acceptance flags, invoked on any offer mutation.
func (t *TradeSession) ResetAcceptance() {
	t.Initiator.Accepted = false
	t.Recipient.Accepted = false
}

// BothAccepted reports whether both sides have accepted the current screen.
func (t *TradeSession) BothAccepted() bool {
	return t.Initiator.Accepted && t.Recipient.Accepted
}

// OfferFor returns a pointer to the offer belonging to playerID, or nil.
func (t *TradeSession) OfferFor(playerID int64) *TradeOffer {
	if t.Initiator.PlayerID == playerID {
		return &t.Initiator
	}
	if t.Recipient.PlayerID == playerID {
		return &t.Recipient
	}
	return nil
}

// PeerOf returns the offer belonging to the other participant.
func (t *TradeSession) PeerOf(playerID int64) *TradeOffer {
	if t.Initiator.PlayerID == playerID {
		return &t.Recipient
	}
	return &t.Initiator
}
