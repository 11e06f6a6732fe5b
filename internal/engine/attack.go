package engine

import (
	"fmt"

	"github.com/DoyleJ11/battleship-backend/internal/board"
)

func (m *Match) attack(c Attack) ([]Event, error) {
	if c.AttackerID == "" || c.TargetID == "" {
		return nil, ErrMissingID
	}
	switch m.Phase {
	case PhaseLobby:
		return nil, ErrNotStarted
	case PhaseConcluded:
		return nil, ErrGameOver
	}
	if c.AttackerID == c.TargetID {
		return nil, ErrSelfAttack
	}
	attacker, err := m.lookup(c.AttackerID)
	if err != nil {
		return nil, err
	}
	if m.turnHolder != attacker.PlayerID {
		return nil, ErrWrongTurn
	}
	if attacker.Defeated {
		return nil, ErrAttackerDefeated
	}
	target, err := m.lookup(c.TargetID)
	if err != nil {
		return nil, err
	}
	if target.Defeated {
		return nil, ErrTargetDefeated
	}
	cell := target.Board.At(c.At)
	if cell == nil {
		return nil, fmt.Errorf("%w: %s", board.ErrInvalidCoord, c.At)
	}

	switch {
	case cell.Mine:
		return m.detonate(attacker, target, cell), nil
	case cell.Shield:
		cell.Shield = false
		events := []Event{
			{Type: EvtSuccess, To: []string{attacker.PlayerID},
				Text: fmt.Sprintf("your attack on %s at %s was blocked by a shield", target.PlayerID, cell.Coord)},
			{Type: EvtSuccess, To: []string{target.PlayerID},
				Text: fmt.Sprintf("your shield at %s blocked an attack from %s", cell.Coord, attacker.PlayerID)},
		}
		return append(events, m.nextTurn()...), nil
	case cell.Destroyed:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDestroyed, cell.Coord)
	}

	cell.Destroyed = true
	cell.Revealed = true
	hit := cell.HasShip()
	events := []Event{
		{Type: EvtAttack, PlayerID: target.PlayerID, At: cell.Coord, Success: hit},
		revealEvent(target, cell, nil),
	}
	if hit {
		attacker.Score += m.rules.HitBonus
		events = append(events, pointsEvent(attacker))
	}
	return append(events, m.settle(target)...), nil
}

// detonate resolves an attack on a mined cell. The mine is spent and a random
// undestroyed cell around the same coordinate on the attacker's own board is
// destroyed instead.
func (m *Match) detonate(attacker, target *Seat, mined *board.Cell) []Event {
	events := []Event{revealEvent(target, mined, nil)}
	mined.Mine = false
	mined.Revealed = true

	var candidates []*board.Cell
	for _, c := range board.Adjacent(mined.Coord) {
		if cell := attacker.Board.At(c); !cell.Destroyed {
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) > 0 {
		hit := candidates[m.rng.Intn(len(candidates))]
		hit.Destroyed = true
		hit.Revealed = true
		events = append(events, revealEvent(attacker, hit, nil))
	}

	target.Score += m.rules.MineBonus
	events = append(events,
		pointsEvent(target),
		Event{Type: EvtSuccess, To: []string{attacker.PlayerID},
			Text: fmt.Sprintf("you hit a mine on %s at %s", target.PlayerID, mined.Coord)},
		Event{Type: EvtSuccess, To: []string{target.PlayerID},
			Text: fmt.Sprintf("%s hit your mine at %s", attacker.PlayerID, mined.Coord)},
	)
	return append(events, m.settle(attacker)...)
}

// settle marks victim defeated once its fleet is gone, concludes the match
// when a single undefeated seat remains, and otherwise passes the turn.
func (m *Match) settle(victim *Seat) []Event {
	var events []Event
	if !victim.Defeated && victim.Board.AllShipsDestroyed() {
		victim.Defeated = true
		events = append(events, Event{Type: EvtPlayerDefeated, PlayerID: victim.PlayerID})
	}

	var standing []*Seat
	for _, s := range m.Roster {
		if !s.Defeated {
			standing = append(standing, s)
		}
	}
	if len(standing) == 1 {
		m.Phase = PhaseConcluded
		winner := standing[0].PlayerID
		m.turnHolder = ""
		return append(events,
			Event{Type: EvtPlayerWin, PlayerID: winner},
			Event{Type: EvtConcluded, PlayerID: winner},
			Event{Type: EvtScheduleDeletion, After: m.rules.ConcludedGrace},
		)
	}
	return append(events, m.nextTurn()...)
}

// nextTurn hands the turn to the next connected, undefeated seat in roster
// order. With no such seat the pointer stays put until one reconnects.
func (m *Match) nextTurn() []Event {
	n := len(m.Roster)
	if n == 0 {
		return nil
	}
	from := m.seatIndex(m.turnHolder)
	pick := func(ok func(*Seat) bool) *Seat {
		for step := 1; step <= n; step++ {
			s := m.Roster[((from+step)%n+n)%n]
			if ok(s) {
				return s
			}
		}
		return nil
	}

	next := pick((*Seat).canPlay)
	if next == nil {
		return nil
	}
	m.turnHolder = next.PlayerID
	m.Turn++
	return []Event{{Type: EvtTurn, PlayerID: m.turnHolder, Turn: m.Turn}}
}

// turnStuck reports whether the turn holder can no longer act.
func (m *Match) turnStuck() bool {
	if m.Phase != PhaseActive {
		return false
	}
	s := m.Seat(m.turnHolder)
	return s == nil || !s.canPlay()
}

func pointsEvent(s *Seat) Event {
	return Event{Type: EvtPoints, To: []string{s.PlayerID}, PlayerID: s.PlayerID, Points: s.Score}
}
