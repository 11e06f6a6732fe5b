package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/battleship-backend/internal/board"
	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

var (
	ErrMalformed          = errors.New("malformed message")
	ErrUnknownType        = errors.New("unknown message type")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrMissingField       = errors.New("missing field")
)

// Route says how a request finds its match.
type Route int

const (
	// RouteCreate asks for a new match.
	RouteCreate Route = iota
	// RouteGame looks the match up by GameID.
	RouteGame
	// RoutePlayer looks the match up by the acting player.
	RoutePlayer
)

// Request is a decoded instruction ready to be routed to a session.
type Request struct {
	Instruction string
	Route       Route
	GameID      string
	PlayerID    string
	Cmd         engine.Command
}

// Decode parses a raw frame. Any error here means the frame should be
// dropped without a reply.
func Decode(data []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}

// Request validates m and turns it into a command on behalf of connID.
func (m ClientMessage) Request(connID string) (Request, error) {
	if m.Type != TypeInstruction {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}

	req := Request{Instruction: m.Instruction}
	switch m.Instruction {
	case CreateGame:
		req.Route = RouteCreate
		return req, nil

	case JoinGame:
		if err := needFields(m.GameID, "gameId", m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Join{ConnID: connID, PlayerID: m.PlayerID}
		return req.byGame(m.GameID, m.PlayerID), nil

	case GetReadyPlayers:
		if err := needFields(m.GameID, "gameId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.ListReady{}
		return req.byGame(m.GameID, ""), nil

	case StartGame:
		if err := needFields(m.GameID, "gameId", m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Start{PlayerID: m.PlayerID}
		return req.byGame(m.GameID, m.PlayerID), nil

	case GetTurnOf:
		if err := needFields(m.GameID, "gameId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.TurnOf{}
		return req.byGame(m.GameID, ""), nil

	case DeleteGame:
		if err := needFields(m.GameID, "gameId", m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Delete{PlayerID: m.PlayerID}
		return req.byGame(m.GameID, m.PlayerID), nil

	case GetBoats:
		if err := needFields(m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.ListShips{PlayerID: m.PlayerID}

	case PlayerReady:
		if err := needFields(m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Ready{PlayerID: m.PlayerID}

	case PlayerUnready:
		if err := needFields(m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Unready{PlayerID: m.PlayerID}

	case LeaveGame:
		if err := needFields(m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Remove{PlayerID: m.PlayerID}

	case PlaceBoat:
		if err := needFields(m.PlayerID, "playerId", m.BoatName, "boatName"); err != nil {
			return Request{}, err
		}
		at, err := m.coord()
		if err != nil {
			return Request{}, err
		}
		req.Cmd = engine.PlaceShip{
			PlayerID: m.PlayerID,
			Ship:     board.ShipName(m.BoatName),
			At:       at,
			Vertical: m.Vertical,
		}

	case PlaceMine, PlaceShield:
		if err := needFields(m.PlayerID, "playerId"); err != nil {
			return Request{}, err
		}
		at, err := m.coord()
		if err != nil {
			return Request{}, err
		}
		if m.Instruction == PlaceMine {
			req.Cmd = engine.PlaceMine{PlayerID: m.PlayerID, At: at}
		} else {
			req.Cmd = engine.PlaceShield{PlayerID: m.PlayerID, At: at}
		}

	case AttackPosition:
		if err := needFields(m.UserID, "userId", m.TargetID, "targetId"); err != nil {
			return Request{}, err
		}
		at, err := m.coord()
		if err != nil {
			return Request{}, err
		}
		req.Cmd = engine.Attack{AttackerID: m.UserID, TargetID: m.TargetID, At: at}
		req.Route = RoutePlayer
		req.PlayerID = m.UserID
		return req, nil

	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownInstruction, m.Instruction)
	}

	req.Route = RoutePlayer
	req.PlayerID = m.PlayerID
	return req, nil
}

func (r Request) byGame(gameID, playerID string) Request {
	r.Route = RouteGame
	r.GameID = gameID
	r.PlayerID = playerID
	return r
}

func (m ClientMessage) coord() (board.Coord, error) {
	if err := needFields(string(m.Row), "row", string(m.Col), "col"); err != nil {
		return board.Coord{}, err
	}
	return board.ParseCoord(string(m.Row), string(m.Col))
}

// needFields takes value/name pairs and reports the first empty value.
func needFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, pairs[i+1])
		}
	}
	return nil
}
