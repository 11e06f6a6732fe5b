package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	TypeInstruction     = "instruction"
	TypeGameInstruction = "gameInstruction"
	TypeSuccess         = "success"
	TypeError           = "error"
)

// Inbound instruction names.
const (
	CreateGame      = "createGame"
	JoinGame        = "joinGame"
	GetBoats        = "getBoats"
	GetReadyPlayers = "getReadyPlayers"
	PlayerReady     = "playerReady"
	PlayerUnready   = "playerUnready"
	StartGame       = "startGame"
	GetTurnOf       = "getTurnOf"
	AttackPosition  = "attackPosition"
	PlaceBoat       = "placeBoat"
	LeaveGame       = "leaveGame"
	DeleteGame      = "deleteGame"
	PlaceMine       = "placeMine"
	PlaceShield     = "placeShield"
)

// ClientMessage is the union of every inbound instruction's fields.
type ClientMessage struct {
	Type        string `json:"type"`
	Instruction string `json:"instruction"`

	GameID   string `json:"gameId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	TargetID string `json:"targetId,omitempty"`
	BoatName string `json:"boatName,omitempty"`
	Row      Token  `json:"row,omitempty"`
	Col      Token  `json:"col,omitempty"`
	Vertical bool   `json:"vertical,omitempty"`
}

// Token is a coordinate token. Clients send rows and columns either as
// strings ("A", "10") or as bare numbers (10); both decode to the string.
type Token string

func (t *Token) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Token(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("coordinate token: %w", err)
	}
	*t = Token(n.String())
	return nil
}

// Message is one outbound envelope, encoded as a flat JSON object.
type Message map[string]any
