package engine

import (
	"fmt"
	"math/rand"

	"github.com/DoyleJ11/battleship-backend/internal/board"
)

type Seat struct {
	PlayerID string
	ConnID   string // empty while disconnected
	Score    int
	Ready    bool
	Defeated bool
	Board    *board.Board
}

func newSeat(playerID, connID string) *Seat {
	return &Seat{PlayerID: playerID, ConnID: connID, Board: board.New()}
}

func (s *Seat) Connected() bool { return s.ConnID != "" }

func (s *Seat) canPlay() bool { return s.Connected() && !s.Defeated }

// Match is the authoritative state of one game. It is not safe for
// concurrent use; the owning session serializes every call to Apply.
type Match struct {
	ID     string
	Phase  Phase
	Roster []*Seat // position 0 is the host
	Turn   int

	turnHolder string
	eligible   bool
	deleted    bool
	rules      Rules
	rng        *rand.Rand
}

func NewMatch(id string, rules Rules, rng *rand.Rand) *Match {
	return &Match{
		ID:    id,
		Phase: PhaseLobby,
		rules: rules,
		rng:   rng,
	}
}

// Apply validates cmd against the current state and, on success, mutates the
// match and returns the events it produced. A rejected command leaves the
// match untouched.
func (m *Match) Apply(cmd Command) ([]Event, error) {
	if m.deleted {
		switch cmd.(type) {
		case Delete, Expire:
			return nil, nil
		}
		return nil, ErrGameDeleted
	}

	switch c := cmd.(type) {
	case Join:
		return m.join(c)
	case Disconnect:
		return m.disconnect(c)
	case Remove:
		return m.remove(c)
	case PlaceShip:
		return m.placeShip(c)
	case PlaceMine:
		return m.placeTrap(c.PlayerID, c.At, true)
	case PlaceShield:
		return m.placeTrap(c.PlayerID, c.At, false)
	case Ready:
		return m.ready(c)
	case Unready:
		return m.unready(c)
	case Start:
		return m.start(c)
	case Attack:
		return m.attack(c)
	case ListShips:
		return m.listShips(c)
	case ListReady:
		return m.listReady(), nil
	case TurnOf:
		return m.turnOf()
	case Delete:
		return m.hostDelete(c)
	case Expire:
		return m.expire(), nil
	default:
		return nil, ErrUnsupportedCommand
	}
}

func (m *Match) Seat(playerID string) *Seat {
	for _, s := range m.Roster {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

func (m *Match) seatIndex(playerID string) int {
	for i, s := range m.Roster {
		if s.PlayerID == playerID {
			return i
		}
	}
	return -1
}

func (m *Match) seatByConn(connID string) *Seat {
	for _, s := range m.Roster {
		if s.ConnID == connID {
			return s
		}
	}
	return nil
}

func (m *Match) Host() *Seat {
	if len(m.Roster) == 0 {
		return nil
	}
	return m.Roster[0]
}

func (m *Match) TurnHolder() string { return m.turnHolder }

func (m *Match) Deleted() bool { return m.deleted }

func (m *Match) ConnectedCount() int {
	n := 0
	for _, s := range m.Roster {
		if s.Connected() {
			n++
		}
	}
	return n
}

// IsFull counts connected seats before the start and every roster seat after.
func (m *Match) IsFull() bool {
	if m.Phase == PhaseLobby {
		return m.ConnectedCount() >= MaxSeats
	}
	return len(m.Roster) >= MaxSeats
}

func (m *Match) lookup(playerID string) (*Seat, error) {
	if playerID == "" {
		return nil, ErrMissingID
	}
	s := m.Seat(playerID)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return s, nil
}

// lobbySeat resolves a seat that may still change its setup.
func (m *Match) lobbySeat(playerID string) (*Seat, error) {
	s, err := m.lookup(playerID)
	if err != nil {
		return nil, err
	}
	if m.Phase != PhaseLobby {
		return nil, ErrGameStarted
	}
	return s, nil
}

func (m *Match) startEligible() bool {
	if m.Phase != PhaseLobby {
		return false
	}
	connected := 0
	for _, s := range m.Roster {
		if !s.Connected() {
			continue
		}
		if !s.Ready {
			return false
		}
		connected++
	}
	return connected >= 2
}

// syncEligibility tells the host when start eligibility flips, or always when
// force is set.
func (m *Match) syncEligibility(force bool) []Event {
	now := m.startEligible()
	if now == m.eligible && !force {
		return nil
	}
	m.eligible = now
	host := m.Host()
	if host == nil || !host.Connected() || m.Phase != PhaseLobby {
		return nil
	}
	typ := EvtGameUnready
	if now {
		typ = EvtGameReady
	}
	return []Event{{Type: typ, To: []string{host.PlayerID}, GameID: m.ID}}
}

func (m *Match) placeShip(c PlaceShip) ([]Event, error) {
	s, err := m.lobbySeat(c.PlayerID)
	if err != nil {
		return nil, err
	}
	if s.Ready {
		return nil, ErrSeatReady
	}
	if err := s.Board.PlaceShip(c.Ship, c.At, c.Vertical); err != nil {
		return nil, err
	}
	return []Event{{
		Type:     EvtShipPlaced,
		To:       []string{s.PlayerID},
		PlayerID: s.PlayerID,
		Ship:     c.Ship,
		At:       c.At,
		Vertical: c.Vertical,
	}}, nil
}

func (m *Match) placeTrap(playerID string, at board.Coord, mine bool) ([]Event, error) {
	s, err := m.lobbySeat(playerID)
	if err != nil {
		return nil, err
	}
	if s.Ready {
		return nil, ErrSeatReady
	}
	mines, shields := s.Board.TrapCount()
	if mine && mines >= m.rules.MaxMines || !mine && shields >= m.rules.MaxShields {
		return nil, ErrTrapLimit
	}
	if mine {
		err = s.Board.PlaceMine(at)
	} else {
		err = s.Board.PlaceShield(at)
	}
	if err != nil {
		return nil, err
	}
	return []Event{revealEvent(s, s.Board.At(at), []string{s.PlayerID})}, nil
}

func (m *Match) ready(c Ready) ([]Event, error) {
	s, err := m.lobbySeat(c.PlayerID)
	if err != nil {
		return nil, err
	}
	if !s.Board.FleetComplete() {
		return nil, ErrFleetIncomplete
	}
	s.Ready = true
	events := []Event{{Type: EvtPlayerReady, PlayerID: s.PlayerID}}
	return append(events, m.syncEligibility(false)...), nil
}

func (m *Match) unready(c Unready) ([]Event, error) {
	s, err := m.lobbySeat(c.PlayerID)
	if err != nil {
		return nil, err
	}
	s.Ready = false
	s.Board.ClearShips()
	events := []Event{{Type: EvtPlayerUnready, PlayerID: s.PlayerID}}
	return append(events, m.syncEligibility(false)...), nil
}

func (m *Match) start(c Start) ([]Event, error) {
	if _, err := m.lookup(c.PlayerID); err != nil {
		return nil, err
	}
	if m.Phase != PhaseLobby {
		return nil, ErrGameStarted
	}
	if m.Host().PlayerID != c.PlayerID {
		return nil, ErrNotHost
	}
	if !m.startEligible() {
		return nil, ErrNotEligible
	}

	var events []Event
	kept := m.Roster[:0]
	for _, s := range m.Roster {
		if s.Connected() {
			kept = append(kept, s)
			continue
		}
		events = append(events, Event{Type: EvtUnbindPlayer, PlayerID: s.PlayerID})
	}
	m.Roster = kept
	m.Phase = PhaseActive
	m.eligible = false
	m.turnHolder = m.Roster[0].PlayerID
	m.Turn = 1

	return append(events,
		Event{Type: EvtGameStarted, GameID: m.ID},
		Event{Type: EvtTurn, PlayerID: m.turnHolder, Turn: m.Turn},
	), nil
}

func (m *Match) listShips(c ListShips) ([]Event, error) {
	s, err := m.lookup(c.PlayerID)
	if err != nil {
		return nil, err
	}
	return append(shipEvents(s, nil), Event{Type: EvtSuccess, Sender: true, Text: "boats listed"}), nil
}

// shipEvents describes every placed ship of s, addressed to the sender when
// to is nil.
func shipEvents(s *Seat, to []string) []Event {
	var events []Event
	for _, ship := range s.Board.Ships() {
		origin, ok := ship.Origin()
		if !ok {
			continue
		}
		events = append(events, Event{
			Type:     EvtShipPlaced,
			To:       to,
			Sender:   to == nil,
			PlayerID: s.PlayerID,
			Ship:     ship.Name,
			At:       origin,
			Vertical: ship.Vertical,
		})
	}
	return events
}

func (m *Match) listReady() []Event {
	var events []Event
	for _, s := range m.Roster {
		if s.Ready {
			events = append(events, Event{Type: EvtPlayerReady, Sender: true, PlayerID: s.PlayerID})
		}
	}
	return events
}

func (m *Match) turnOf() ([]Event, error) {
	if m.Phase == PhaseLobby {
		return nil, ErrNotStarted
	}
	return []Event{{Type: EvtTurn, Sender: true, PlayerID: m.turnHolder, Turn: m.Turn}}, nil
}

func revealEvent(owner *Seat, cell *board.Cell, to []string) Event {
	e := Event{
		Type:      EvtReveal,
		To:        to,
		PlayerID:  owner.PlayerID,
		Slot:      cell.Slot,
		At:        cell.Coord,
		Vertical:  cell.Vertical,
		HasMine:   cell.Mine,
		HasShield: cell.Shield,
		Destroyed: cell.Destroyed,
	}
	if ship := owner.Board.ShipOf(cell); ship != nil {
		e.Ship = ship.Name
	}
	return e
}
