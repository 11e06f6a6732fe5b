package engine

import (
	"fmt"
	"time"
)

func (m *Match) join(c Join) ([]Event, error) {
	if c.PlayerID == "" || c.ConnID == "" {
		return nil, ErrMissingID
	}
	if other := m.seatByConn(c.ConnID); other != nil && other.PlayerID != c.PlayerID {
		return nil, fmt.Errorf("%w: %s", ErrConnectionInUse, other.PlayerID)
	}

	var events []Event
	s := m.Seat(c.PlayerID)
	rejoin := s != nil
	if rejoin {
		if s.ConnID != "" && s.ConnID != c.ConnID {
			events = append(events, Event{Type: EvtUnbindConn, ConnID: s.ConnID})
		}
		s.ConnID = c.ConnID
	} else {
		if m.Phase != PhaseLobby {
			return nil, ErrGameStarted
		}
		if len(m.Roster) >= MaxSeats {
			// A lobby only counts connected seats, so a newcomer may take
			// over the slot of a seat that went away.
			idx := -1
			for i, seat := range m.Roster {
				if !seat.Connected() {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, ErrGameFull
			}
			events = append(events, Event{Type: EvtUnbindPlayer, PlayerID: m.Roster[idx].PlayerID})
			m.Roster = append(m.Roster[:idx], m.Roster[idx+1:]...)
		}
		s = newSeat(c.PlayerID, c.ConnID)
		m.Roster = append(m.Roster, s)
	}

	events = append(events, Event{Type: EvtBind, PlayerID: s.PlayerID, ConnID: s.ConnID})
	if m.Phase != PhaseConcluded {
		events = append(events, Event{Type: EvtCancelDeletion})
	}
	events = append(events, m.presence(s)...)
	if m.turnStuck() {
		events = append(events, m.nextTurn()...)
	}
	if rejoin {
		events = append(events, m.resync(s)...)
	}
	if hostEvents := m.promoteConnectedHost(); hostEvents != nil {
		events = append(events, hostEvents...)
		return append(events, m.syncEligibility(true)...), nil
	}
	return append(events, m.syncEligibility(false)...), nil
}

// presence tells every connected seat about s and tells s about everyone
// already connected, so all clients converge on the same membership view.
func (m *Match) presence(s *Seat) []Event {
	events := []Event{{Type: EvtPlayerJoined, GameID: m.ID, PlayerID: s.PlayerID}}
	me := []string{s.PlayerID}
	for _, other := range m.Roster {
		if other == s || !other.Connected() {
			continue
		}
		events = append(events, Event{Type: EvtPlayerJoined, To: me, GameID: m.ID, PlayerID: other.PlayerID})
	}
	if host := m.Host(); host != nil {
		events = append(events, Event{Type: EvtNewHost, To: me, PlayerID: host.PlayerID})
	}
	for _, other := range m.Roster {
		if other.Ready && other != s {
			events = append(events, Event{Type: EvtPlayerReady, To: me, PlayerID: other.PlayerID})
		}
	}
	return events
}

// resync replays what a returning seat needs to rebuild its view: its own
// placements and readiness, and once the game runs, every revealed cell,
// its score and the turn.
func (m *Match) resync(s *Seat) []Event {
	me := []string{s.PlayerID}
	events := shipEvents(s, me)
	if s.Ready {
		events = append(events, Event{Type: EvtPlayerReady, To: me, PlayerID: s.PlayerID})
	}
	if m.Phase == PhaseLobby {
		return events
	}

	events = append(events, Event{Type: EvtGameStarted, To: me, GameID: m.ID})
	for _, owner := range m.Roster {
		for _, cell := range owner.Board.Revealed() {
			events = append(events, revealEvent(owner, cell, me))
		}
		if owner.Defeated {
			events = append(events, Event{Type: EvtPlayerDefeated, To: me, PlayerID: owner.PlayerID})
		}
	}
	ev := pointsEvent(s)
	events = append(events, ev)
	if m.Phase == PhaseActive {
		events = append(events, Event{Type: EvtTurn, To: me, PlayerID: m.turnHolder, Turn: m.Turn})
	}
	return events
}

// promoteConnectedHost rotates the roster left until a connected seat holds
// position 0. It returns the announcement when the host changed.
func (m *Match) promoteConnectedHost() []Event {
	if len(m.Roster) == 0 || m.ConnectedCount() == 0 {
		return nil
	}
	before := m.Roster[0]
	for !m.Roster[0].Connected() {
		m.rotate()
	}
	if m.Roster[0] == before {
		return nil
	}
	return []Event{{Type: EvtNewHost, PlayerID: m.Roster[0].PlayerID}}
}

func (m *Match) rotate() {
	m.Roster = append(m.Roster[1:], m.Roster[0])
}

func (m *Match) disconnect(c Disconnect) ([]Event, error) {
	if c.ConnID == "" {
		return nil, ErrMissingID
	}
	s := m.seatByConn(c.ConnID)
	if s == nil {
		return nil, ErrConnectionNotFound
	}
	s.ConnID = ""
	events := []Event{
		{Type: EvtUnbindConn, ConnID: c.ConnID},
		{Type: EvtPlayerDisconnected, PlayerID: s.PlayerID},
	}

	if m.Roster[0] == s && len(m.Roster) > 1 {
		m.rotate()
	}
	m.promoteConnectedHost()

	if m.ConnectedCount() == 0 {
		if m.Phase != PhaseConcluded {
			events = append(events, Event{Type: EvtScheduleDeletion, After: m.grace()})
		}
		return events, nil
	}

	if m.Phase == PhaseActive && m.turnHolder == s.PlayerID {
		events = append(events, m.nextTurn()...)
	}
	events = append(events, Event{Type: EvtNewHost, PlayerID: m.Roster[0].PlayerID})
	return append(events, m.syncEligibility(true)...), nil
}

func (m *Match) grace() time.Duration {
	if m.Phase == PhaseLobby {
		return m.rules.LobbyGrace
	}
	return m.rules.ActiveGrace
}

func (m *Match) remove(c Remove) ([]Event, error) {
	s, err := m.lobbySeat(c.PlayerID)
	if err != nil {
		return nil, err
	}

	idx := m.seatIndex(s.PlayerID)
	m.Roster = append(m.Roster[:idx], m.Roster[idx+1:]...)
	var events []Event
	if s.Connected() {
		events = append(events, Event{Type: EvtUnbindConn, ConnID: s.ConnID})
	}
	events = append(events,
		Event{Type: EvtUnbindPlayer, PlayerID: s.PlayerID},
		Event{Type: EvtPlayerLeft, PlayerID: s.PlayerID},
		Event{Type: EvtSuccess, Sender: true, Text: "left game " + m.ID},
	)

	if m.ConnectedCount() == 0 {
		return append(events, Event{Type: EvtScheduleDeletion, After: m.rules.LobbyGrace}), nil
	}
	hostEvents := m.promoteConnectedHost()
	if idx == 0 && hostEvents == nil {
		hostEvents = []Event{{Type: EvtNewHost, PlayerID: m.Roster[0].PlayerID}}
	}
	events = append(events, hostEvents...)
	return append(events, m.syncEligibility(hostEvents != nil)...), nil
}

func (m *Match) hostDelete(c Delete) ([]Event, error) {
	if _, err := m.lookup(c.PlayerID); err != nil {
		return nil, err
	}
	if m.Host().PlayerID != c.PlayerID {
		return nil, ErrNotHost
	}
	return m.deleteMatch(), nil
}

// expire runs when the self-destruct timer fires. A lobby or running game
// that regained a connection survives; a concluded one is always torn down.
func (m *Match) expire() []Event {
	if m.Phase != PhaseConcluded && m.ConnectedCount() > 0 {
		return nil
	}
	return m.deleteMatch()
}

func (m *Match) deleteMatch() []Event {
	if m.deleted {
		return nil
	}
	m.deleted = true
	events := []Event{{Type: EvtGameDeleted, GameID: m.ID}}
	for _, s := range m.Roster {
		if s.Connected() {
			events = append(events, Event{Type: EvtUnbindConn, ConnID: s.ConnID})
		}
		events = append(events, Event{Type: EvtUnbindPlayer, PlayerID: s.PlayerID})
	}
	return append(events, Event{Type: EvtDeleted, GameID: m.ID})
}
