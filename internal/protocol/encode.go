package protocol

import (
	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

// gameInstructions are the in-match events, sent under the gameInstruction
// envelope; every other client event is a plain instruction.
var gameInstructions = map[engine.EventType]bool{
	engine.EvtAttack:         true,
	engine.EvtReveal:         true,
	engine.EvtPlayerWin:      true,
	engine.EvtPoints:         true,
	engine.EvtPlayerDefeated: true,
}

// Encode renders ev as a client envelope. Internal events have none.
func Encode(ev engine.Event) (Message, bool) {
	if ev.Internal() || ev.Type == "" {
		return nil, false
	}
	switch ev.Type {
	case engine.EvtSuccess:
		return Message{"type": TypeSuccess, "text": ev.Text}, true
	case engine.EvtError:
		return Message{"type": TypeError, "text": ev.Text}, true
	}

	envelope := TypeInstruction
	if gameInstructions[ev.Type] {
		envelope = TypeGameInstruction
	}
	msg := Message{"type": envelope, "instruction": string(ev.Type)}

	switch ev.Type {
	case engine.EvtGameCreated, engine.EvtGameDeleted:
		msg["gameId"] = ev.GameID
	case engine.EvtPlayerJoined:
		msg["playerId"] = ev.PlayerID
		msg["gameId"] = ev.GameID
	case engine.EvtShipPlaced:
		msg["playerId"] = ev.PlayerID
		msg["boatName"] = string(ev.Ship)
		msg["row"] = ev.At.RowToken()
		msg["col"] = ev.At.ColToken()
		msg["vertical"] = ev.Vertical
	case engine.EvtTurn:
		msg["playerId"] = ev.PlayerID
		msg["turnNumber"] = ev.Turn
	case engine.EvtAttack:
		msg["playerId"] = ev.PlayerID
		msg["row"] = ev.At.RowToken()
		msg["col"] = ev.At.ColToken()
		msg["success"] = ev.Success
	case engine.EvtReveal:
		msg["playerId"] = ev.PlayerID
		msg["boatName"] = string(ev.Ship)
		msg["slot"] = ev.Slot
		msg["row"] = ev.At.RowToken()
		msg["col"] = ev.At.ColToken()
		msg["vertical"] = ev.Vertical
		msg["hasMine"] = ev.HasMine
		msg["hasShield"] = ev.HasShield
		msg["isDestroyed"] = ev.Destroyed
	case engine.EvtPoints:
		msg["points"] = ev.Points
	case engine.EvtGameReady, engine.EvtGameUnready, engine.EvtGameStarted:
		// no payload
	default:
		msg["playerId"] = ev.PlayerID
	}
	return msg, true
}
