package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tickrealm/core/internal/db"
	"github.com/tickrealm/core/internal/model"
)

const entityKindCharacter = "character"

// CloseCodeDuplicateCharacter is used when a second socket tries to enter
// the world as a character another live socket already owns.
const CloseCodeDuplicateCharacter = 4004

// characterData is the JSON shape stored in an entities row of kind
// "character": the minimal fields the Connection Handler needs to spawn a
// Player. Everything else (stats, equipment, quest state) belongs to the
// out-of-scope persistence schema this core only reads the position from.
type characterData struct {
	Name    string `json:"name"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
	Z       int32  `json:"z"`
	Heading uint16 `json:"heading"`
}

// Authenticate validates login credentials and the active-ban gate (spec
// §2.15). Called once per accepted connection, before a Socket is
// registered with the World.
func (w *World) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	u, err := w.Users.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if u == nil || !db.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials")
	}

	ban, err := w.Bans.Active(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, fmt.Errorf("account banned: %s", ban.Reason)
	}

	if err := w.Users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (w *World) handleCharacterListRequest(socket *model.Socket, data any) {
	rows, err := w.Entities.ListByOwnerAndKind(context.Background(), socket.AccountID, entityKindCharacter)
	if err != nil {
		slog.Error("listing characters", "accountId", socket.AccountID, "err", err)
		return
	}

	list := make([]map[string]any, 0, len(rows))
	for _, e := range rows {
		var cd characterData
		if err := json.Unmarshal(e.Data, &cd); err != nil {
			slog.Warn("malformed character entity", "entityId", e.ID, "err", err)
			continue
		}
		list = append(list, map[string]any{"id": e.ID, "name": cd.Name})
	}
	_ = socket.Send("characterList", map[string]any{"characters": list})
}

func (w *World) handleCharacterCreate(socket *model.Socket, data any) {
	m, ok := asMap(data)
	if !ok {
		return
	}
	name, ok := stringField(m, "name")
	if !ok || name == "" {
		return
	}

	cd := characterData{
		Name:    name,
		X:       w.SpawnPoint.X,
		Y:       w.SpawnPoint.Y,
		Z:       w.SpawnPoint.Z,
		Heading: w.SpawnPoint.Heading,
	}
	payload, err := json.Marshal(cd)
	if err != nil {
		return
	}

	id, err := w.Entities.Create(context.Background(), socket.AccountID, entityKindCharacter, payload)
	if err != nil {
		slog.Error("creating character", "accountId", socket.AccountID, "err", err)
		return
	}
	_ = socket.Send("characterCreated", map[string]any{"id": id, "name": name})
}

func (w *World) handleCharacterSelected(socket *model.Socket, data any) {
	m, ok := asMap(data)
	if !ok {
		return
	}
	charID, ok := intField(m, "characterId")
	if !ok {
		return
	}

	ent, err := w.Entities.Get(context.Background(), socket.AccountID, charID)
	if err != nil {
		slog.Error("loading character", "characterId", charID, "err", err)
		return
	}
	if ent == nil {
		return
	}
	socket.SetSelectedCharacterID(charID)
}

// handleEnterWorld spawns the selected character as a Player, binding it to
// this socket. A character already bound to another live socket refuses the
// new claim and disconnects it (spec §4.13 rejection rule).
func (w *World) handleEnterWorld(socket *model.Socket, data any) {
	charID := socket.SelectedCharacterID()
	if charID == 0 {
		return
	}
	if _, alreadyIn := w.Player(charID); alreadyIn {
		w.Disconnect(socket.ID, CloseCodeDuplicateCharacter)
		return
	}

	ent, err := w.Entities.Get(context.Background(), socket.AccountID, charID)
	if err != nil || ent == nil {
		w.Disconnect(socket.ID, CloseCodeDuplicateCharacter)
		return
	}
	var cd characterData
	if err := json.Unmarshal(ent.Data, &cd); err != nil {
		slog.Error("malformed character data", "characterId", charID, "err", err)
		return
	}

	loc := w.clampToTerrain(model.Location{X: cd.X, Y: cd.Y, Z: cd.Z, Heading: cd.Heading})
	p := model.NewPlayer(charID, cd.Name, loc, socket.ID)

	socket.SetBoundPlayerID(charID)
	w.Broadcast.BindPlayer(charID, socket.ID)
	w.AddPlayer(p)
	w.Broadcast.SendToAOI(charID, "entityAdded", w.entitySnapshot(charID), "")
}

// handleClientReady flips loading off and fires PLAYER_READY, the signal
// the (out-of-scope) inventory/stats subsystems wait on to push their first
// snapshot to the client.
func (w *World) handleClientReady(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	p, ok := w.Player(playerID)
	if !ok {
		return
	}
	p.Loading = false
	w.Broadcast.SendToAOI(playerID, "entityModified", map[string]any{"id": playerID, "loading": false}, "")
	w.Events.publishPlayerReady(playerID)
}
