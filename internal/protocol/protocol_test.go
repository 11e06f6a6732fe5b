package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/battleship-backend/internal/board"
	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

func decodeRequest(t *testing.T, raw string) (Request, error) {
	t.Helper()
	m, err := Decode([]byte(raw))
	require.NoError(t, err)
	return m.Request("conn-1")
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"", "{", "[1,2]", `{"row": true}`} {
		_, err := Decode([]byte(raw))
		require.ErrorIs(t, err, ErrMalformed, "payload %q", raw)
	}
}

func TestRequest_Instructions(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		route    Route
		gameID   string
		playerID string
		cmd      engine.Command
	}{
		{
			name:  "create",
			raw:   `{"type":"instruction","instruction":"createGame"}`,
			route: RouteCreate,
		},
		{
			name:     "join",
			raw:      `{"type":"instruction","instruction":"joinGame","gameId":"ABC123","playerId":"p1"}`,
			route:    RouteGame,
			gameID:   "ABC123",
			playerID: "p1",
			cmd:      engine.Join{ConnID: "conn-1", PlayerID: "p1"},
		},
		{
			name:   "ready players",
			raw:    `{"type":"instruction","instruction":"getReadyPlayers","gameId":"ABC123"}`,
			route:  RouteGame,
			gameID: "ABC123",
			cmd:    engine.ListReady{},
		},
		{
			name:     "start",
			raw:      `{"type":"instruction","instruction":"startGame","gameId":"ABC123","playerId":"p1"}`,
			route:    RouteGame,
			gameID:   "ABC123",
			playerID: "p1",
			cmd:      engine.Start{PlayerID: "p1"},
		},
		{
			name:   "turn of",
			raw:    `{"type":"instruction","instruction":"getTurnOf","gameId":"ABC123"}`,
			route:  RouteGame,
			gameID: "ABC123",
			cmd:    engine.TurnOf{},
		},
		{
			name:     "boats",
			raw:      `{"type":"instruction","instruction":"getBoats","playerId":"p1"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.ListShips{PlayerID: "p1"},
		},
		{
			name:     "ready",
			raw:      `{"type":"instruction","instruction":"playerReady","playerId":"p1"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.Ready{PlayerID: "p1"},
		},
		{
			name:     "unready",
			raw:      `{"type":"instruction","instruction":"playerUnready","playerId":"p1"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.Unready{PlayerID: "p1"},
		},
		{
			name:     "place boat with string tokens",
			raw:      `{"type":"instruction","instruction":"placeBoat","playerId":"p1","boatName":"cruiser","row":"J","col":"10","vertical":false}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.PlaceShip{PlayerID: "p1", Ship: board.Cruiser, At: board.Coord{Row: 9, Col: 9}},
		},
		{
			name:     "place boat with numeric column",
			raw:      `{"type":"instruction","instruction":"placeBoat","playerId":"p1","boatName":"destroyer","row":"B","col":3,"vertical":true}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.PlaceShip{PlayerID: "p1", Ship: board.Destroyer, At: board.Coord{Row: 1, Col: 2}, Vertical: true},
		},
		{
			name:     "attack routes by attacker",
			raw:      `{"type":"instruction","instruction":"attackPosition","userId":"p1","targetId":"p2","row":"A","col":"1"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.Attack{AttackerID: "p1", TargetID: "p2", At: board.Coord{}},
		},
		{
			name:     "leave",
			raw:      `{"type":"instruction","instruction":"leaveGame","playerId":"p1"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.Remove{PlayerID: "p1"},
		},
		{
			name:     "delete",
			raw:      `{"type":"instruction","instruction":"deleteGame","gameId":"ABC123","playerId":"p1"}`,
			route:    RouteGame,
			gameID:   "ABC123",
			playerID: "p1",
			cmd:      engine.Delete{PlayerID: "p1"},
		},
		{
			name:     "mine",
			raw:      `{"type":"instruction","instruction":"placeMine","playerId":"p1","row":"C","col":"4"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.PlaceMine{PlayerID: "p1", At: board.Coord{Row: 2, Col: 3}},
		},
		{
			name:     "shield",
			raw:      `{"type":"instruction","instruction":"placeShield","playerId":"p1","row":"C","col":"4"}`,
			route:    RoutePlayer,
			playerID: "p1",
			cmd:      engine.PlaceShield{PlayerID: "p1", At: board.Coord{Row: 2, Col: 3}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := decodeRequest(t, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.route, req.Route)
			assert.Equal(t, tc.gameID, req.GameID)
			assert.Equal(t, tc.playerID, req.PlayerID)
			assert.Equal(t, tc.cmd, req.Cmd)
		})
	}
}

func TestRequest_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"wrong envelope", `{"type":"chat","instruction":"joinGame"}`, ErrUnknownType},
		{"unknown instruction", `{"type":"instruction","instruction":"fly"}`, ErrUnknownInstruction},
		{"join without player", `{"type":"instruction","instruction":"joinGame","gameId":"ABC123"}`, ErrMissingField},
		{"attack without target", `{"type":"instruction","instruction":"attackPosition","userId":"p1","row":"A","col":"1"}`, ErrMissingField},
		{"place without column", `{"type":"instruction","instruction":"placeBoat","playerId":"p1","boatName":"cruiser","row":"A"}`, ErrMissingField},
		{"column zero", `{"type":"instruction","instruction":"placeMine","playerId":"p1","row":"A","col":0}`, board.ErrInvalidCoord},
		{"row out of range", `{"type":"instruction","instruction":"placeMine","playerId":"p1","row":"K","col":"1"}`, board.ErrInvalidCoord},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeRequest(t, tc.raw)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func encodeJSON(t *testing.T, ev engine.Event) map[string]any {
	t.Helper()
	msg, ok := Encode(ev)
	require.True(t, ok)
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEncode_Envelopes(t *testing.T) {
	assert.Equal(t,
		map[string]any{"type": "error", "text": "invalid turn"},
		encodeJSON(t, engine.Event{Type: engine.EvtError, Text: "invalid turn"}))

	assert.Equal(t,
		map[string]any{"type": "instruction", "instruction": "turnOfPlayer", "playerId": "p2", "turnNumber": float64(3)},
		encodeJSON(t, engine.Event{Type: engine.EvtTurn, PlayerID: "p2", Turn: 3}))

	assert.Equal(t,
		map[string]any{"type": "gameInstruction", "instruction": "attack", "playerId": "p2", "row": "J", "col": "10", "success": false},
		encodeJSON(t, engine.Event{Type: engine.EvtAttack, PlayerID: "p2", At: board.Coord{Row: 9, Col: 9}}))

	assert.Equal(t,
		map[string]any{"type": "gameInstruction", "instruction": "pointsUpdate", "points": float64(0)},
		encodeJSON(t, engine.Event{Type: engine.EvtPoints, PlayerID: "p1"}))

	assert.Equal(t,
		map[string]any{"type": "instruction", "instruction": "gameReady"},
		encodeJSON(t, engine.Event{Type: engine.EvtGameReady, GameID: "ABC123"}))
}

func TestEncode_Reveal(t *testing.T) {
	got := encodeJSON(t, engine.Event{
		Type:      engine.EvtReveal,
		PlayerID:  "p2",
		Ship:      board.Cruiser,
		Slot:      2,
		At:        board.Coord{Row: 2, Col: 4},
		Vertical:  true,
		Destroyed: true,
	})
	assert.Equal(t, map[string]any{
		"type":        "gameInstruction",
		"instruction": "revealPosition",
		"playerId":    "p2",
		"boatName":    "cruiser",
		"slot":        float64(2),
		"row":         "C",
		"col":         "5",
		"vertical":    true,
		"hasMine":     false,
		"hasShield":   false,
		"isDestroyed": true,
	}, got)
}

func TestEncode_InternalEventsStayInside(t *testing.T) {
	_, ok := Encode(engine.Event{Type: engine.EvtBind, PlayerID: "p1", ConnID: "c1"})
	assert.False(t, ok)
}
