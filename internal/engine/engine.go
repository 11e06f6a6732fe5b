package engine

import (
	"errors"
	"time"

	"github.com/DoyleJ11/battleship-backend/internal/board"
)

var ErrMissingID = errors.New("missing identifier")
var ErrPlayerNotFound = errors.New("player not found")
var ErrConnectionNotFound = errors.New("connection not bound to this game")
var ErrGameStarted = errors.New("game already started")
var ErrGameFull = errors.New("game is full")
var ErrNotStarted = errors.New("game has not started")
var ErrGameOver = errors.New("game is over")
var ErrGameDeleted = errors.New("game deleted")
var ErrNotHost = errors.New("only the host can do that")
var ErrNotEligible = errors.New("game is not ready to start")
var ErrSeatReady = errors.New("player is ready; unready before changing placements")
var ErrFleetIncomplete = errors.New("all ships must be placed")
var ErrTrapLimit = errors.New("no traps of that kind left")
var ErrWrongTurn = errors.New("invalid turn")
var ErrSelfAttack = errors.New("cannot attack yourself")
var ErrTargetDefeated = errors.New("target already defeated")
var ErrAttackerDefeated = errors.New("defeated players cannot attack")
var ErrConnectionInUse = errors.New("connection already holds another seat")
var ErrAlreadyDestroyed = errors.New("position already destroyed")
var ErrUnsupportedCommand = errors.New("unsupported command")

// MaxSeats is the roster capacity of a match.
const MaxSeats = 4

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseActive    Phase = "active"
	PhaseConcluded Phase = "concluded"
)

type Rules struct {
	HitBonus   int
	MineBonus  int
	MaxMines   int
	MaxShields int

	// Grace periods before a match with nobody connected is deleted.
	LobbyGrace     time.Duration
	ActiveGrace    time.Duration
	ConcludedGrace time.Duration
}

func DefaultRules() Rules {
	return Rules{
		HitBonus:       5,
		MineBonus:      5,
		MaxMines:       1,
		MaxShields:     1,
		LobbyGrace:     5 * time.Second,
		ActiveGrace:    30 * time.Second,
		ConcludedGrace: 5 * time.Second,
	}
}

// Command is the closed set of inputs a Match accepts.
type Command interface{ isCommand() }

type Join struct {
	ConnID   string
	PlayerID string
}

type Disconnect struct{ ConnID string }

// Remove frees a lobby seat for good.
type Remove struct{ PlayerID string }

type PlaceShip struct {
	PlayerID string
	Ship     board.ShipName
	At       board.Coord
	Vertical bool
}

type PlaceMine struct {
	PlayerID string
	At       board.Coord
}

type PlaceShield struct {
	PlayerID string
	At       board.Coord
}

type Ready struct{ PlayerID string }

type Unready struct{ PlayerID string }

type Start struct{ PlayerID string }

type Attack struct {
	AttackerID string
	TargetID   string
	At         board.Coord
}

type ListShips struct{ PlayerID string }

type ListReady struct{}

type TurnOf struct{}

// Delete is the host tearing the match down.
type Delete struct{ PlayerID string }

// Expire is the self-destruct timer firing.
type Expire struct{}

func (Join) isCommand()        {}
func (Disconnect) isCommand()  {}
func (Remove) isCommand()      {}
func (PlaceShip) isCommand()   {}
func (PlaceMine) isCommand()   {}
func (PlaceShield) isCommand() {}
func (Ready) isCommand()       {}
func (Unready) isCommand()     {}
func (Start) isCommand()       {}
func (Attack) isCommand()      {}
func (ListShips) isCommand()   {}
func (ListReady) isCommand()   {}
func (TurnOf) isCommand()      {}
func (Delete) isCommand()      {}
func (Expire) isCommand()      {}

type EventType string

const (
	EvtSuccess            EventType = "success"
	EvtError              EventType = "error"
	EvtGameCreated        EventType = "createGame"
	EvtPlayerJoined       EventType = "joinGame"
	EvtShipPlaced         EventType = "placeBoat"
	EvtPlayerReady        EventType = "playerReady"
	EvtPlayerUnready      EventType = "playerUnready"
	EvtGameReady          EventType = "gameReady"
	EvtGameUnready        EventType = "gameUnready"
	EvtTurn               EventType = "turnOfPlayer"
	EvtGameStarted        EventType = "startGame"
	EvtPlayerDisconnected EventType = "playerDisconnect"
	EvtPlayerLeft         EventType = "playerLeave"
	EvtNewHost            EventType = "newHost"
	EvtGameDeleted        EventType = "deleteGame"
	EvtAttack             EventType = "attack"
	EvtReveal             EventType = "revealPosition"
	EvtPlayerDefeated     EventType = "playerDefeated"
	EvtPlayerWin          EventType = "playerWin"
	EvtPoints             EventType = "pointsUpdate"

	// Internal events are consumed by the session that hosts the match.
	EvtBind             EventType = "_bind"
	EvtUnbindConn       EventType = "_unbindConn"
	EvtUnbindPlayer     EventType = "_unbindPlayer"
	EvtScheduleDeletion EventType = "_scheduleDeletion"
	EvtCancelDeletion   EventType = "_cancelDeletion"
	EvtConcluded        EventType = "_concluded"
	EvtDeleted          EventType = "_deleted"
)

// Event is one output of Apply. With Sender set it goes back to whoever sent
// the command; otherwise it goes to the seats listed in To, or to every
// connected seat when To is empty.
type Event struct {
	Type   EventType
	To     []string
	Sender bool

	GameID   string
	PlayerID string
	ConnID   string

	Ship      board.ShipName
	Slot      int
	At        board.Coord
	Vertical  bool
	Success   bool
	HasMine   bool
	HasShield bool
	Destroyed bool

	Points int
	Turn   int
	Text   string
	After  time.Duration
}

func (e Event) Internal() bool {
	return len(e.Type) > 0 && e.Type[0] == '_'
}
