package movement

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

type fakeBroadcaster struct {
	lastPath []model.Tile
}

func (f *fakeBroadcaster) BroadcastTileMovementStart(entityID int64, path []model.Tile, mode model.MovementMode) {
	f.lastPath = path
}

func TestMovePlayerToward_CardinalMeleeReach(t *testing.T) {
	b := &fakeBroadcaster{}
	m := New(b)
	m.SyncPlayerPosition(1, model.Tile{X: 5, Z: 0})

	target := model.Tile{X: 5, Z: 3}
	m.MovePlayerToward(1, target, false, 1, "melee")

	var last model.Tile
	for tick := int64(1); tick <= 10; tick++ {
		m.OnTick(tick)
		cur, _ := m.Current(1)
		last = cur
		if _, moving := m.Destination(1); !moving {
			break
		}
	}

	if last.ChebyshevDistance(target) != 1 || !isCardinal(last, target) {
		t.Fatalf("terminal tile %+v is not a cardinal neighbor of %+v", last, target)
	}
}

func TestMovePlayerToward_WestTieBreak(t *testing.T) {
	got := terminalTile(model.Tile{X: 0, Z: 0}, model.Tile{X: 10, Z: 10}, 1, "melee")
	want := model.Tile{X: 9, Z: 10} // West neighbor of target
	if got != want {
		t.Errorf("terminalTile = %+v, want %+v (West tie-break)", got, want)
	}
}

func TestOnTick_RunningMovesTwoTiles(t *testing.T) {
	m := New(nil)
	m.SyncPlayerPosition(1, model.Tile{X: 0, Z: 0})
	m.MovePlayerToward(1, model.Tile{X: 0, Z: 5}, true, 0, "")

	m.OnTick(1)
	cur, _ := m.Current(1)
	if cur.Z != 2 {
		t.Errorf("after one running tick, Z = %d, want 2", cur.Z)
	}
}

func TestCleanup_DropsState(t *testing.T) {
	m := New(nil)
	m.SyncPlayerPosition(1, model.Tile{})
	m.Cleanup(1)
	if _, ok := m.Current(1); ok {
		t.Error("state survived Cleanup")
	}
}
