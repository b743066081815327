package econ

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickrealm/core/internal/db"
	"github.com/tickrealm/core/internal/model"
)

func TestExecuteTradeSwap_SwapsItemsBothWays(t *testing.T) {
	pool := setupTestDB(t)
	inv := db.NewInventoryRepository(pool)
	bank := db.NewBankRepository(pool)
	engine := NewEngine(pool, inv, bank, []int{0, 50, 100, 200}, []int{0, 1000, 3000}, 60*1000*1000*1000)

	const initiatorID, recipientID = int64(1), int64(2)
	seedInventorySlot(t, pool, initiatorID, 0, 100, 5, false, true)
	seedInventorySlot(t, pool, recipientID, 0, 200, 1, false, true)

	session := model.TradeSession{
		ID: "swap-1",
		Initiator: model.TradeOffer{
			PlayerID:     initiatorID,
			OfferedItems: []model.TradeSlotItem{{InventorySlot: 0, ItemID: 100, Quantity: 5}},
		},
		Recipient: model.TradeOffer{
			PlayerID:     recipientID,
			OfferedItems: []model.TradeSlotItem{{InventorySlot: 0, ItemID: 200, Quantity: 1}},
		},
	}

	initiatorGets, recipientGets, err := engine.ExecuteTradeSwap(session)
	require.NoError(t, err)
	require.Equal(t, []model.TradeSlotItem{{InventorySlot: 0, ItemID: 200, Quantity: 1}}, initiatorGets)
	require.Equal(t, []model.TradeSlotItem{{InventorySlot: 0, ItemID: 100, Quantity: 5}}, recipientGets)

	itemID, qty, found := fetchInventorySlot(t, pool, initiatorID, 0)
	require.True(t, found)
	require.Equal(t, int32(200), itemID)
	require.Equal(t, int64(1), qty)

	itemID, qty, found = fetchInventorySlot(t, pool, recipientID, 0)
	require.True(t, found)
	require.Equal(t, int32(100), itemID)
	require.Equal(t, int64(5), qty)

	_, _, found = fetchInventorySlot(t, pool, initiatorID, 1)
	require.False(t, found)
}

func TestAssertOffer_RejectsOutOfRangeQuantity(t *testing.T) {
	inv := &model.Inventory{PlayerID: 1}
	inv.Slots[0] = &model.ItemStack{SlotIndex: 0, ItemID: 100, Quantity: 5, Tradeable: true}

	cases := []int64{-5, 0, model.MaxTradeQuantity + 1}
	for _, qty := range cases {
		err := assertOffer(inv, []model.TradeSlotItem{{InventorySlot: 0, ItemID: 100, Quantity: qty}})
		require.Error(t, err, "quantity %d should be rejected", qty)
		require.Contains(t, err.Error(), string(model.ReasonItemChanged))
	}
}

func TestExecuteTradeSwap_RejectsStaleOffer(t *testing.T) {
	pool := setupTestDB(t)
	inv := db.NewInventoryRepository(pool)
	bank := db.NewBankRepository(pool)
	engine := NewEngine(pool, inv, bank, []int{0, 50, 100, 200}, []int{0, 1000, 3000}, 60*1000*1000*1000)

	const initiatorID, recipientID = int64(10), int64(20)
	seedInventorySlot(t, pool, initiatorID, 0, 100, 3, false, true)

	session := model.TradeSession{
		ID: "swap-2",
		Initiator: model.TradeOffer{
			PlayerID: initiatorID,
			// Claims 5, but only 3 remain: caller dropped 2 after offering.
			OfferedItems: []model.TradeSlotItem{{InventorySlot: 0, ItemID: 100, Quantity: 5}},
		},
		Recipient: model.TradeOffer{PlayerID: recipientID},
	}

	_, _, err := engine.ExecuteTradeSwap(session)
	require.Error(t, err)
	require.Contains(t, err.Error(), string(model.ReasonItemChanged))

	itemID, qty, found := fetchInventorySlot(t, pool, initiatorID, 0)
	require.True(t, found)
	require.Equal(t, int32(100), itemID)
	require.Equal(t, int64(3), qty)
}
