package engine

// SeatView is a read-only copy of one seat, safe to hand across goroutines.
type SeatView struct {
	PlayerID  string
	Connected bool
	Score     int
	Ready     bool
	Defeated  bool
	Placed    int
}

type View struct {
	ID         string
	Phase      Phase
	Turn       int
	TurnHolder string
	Host       string
	Deleted    bool
	Seats      []SeatView
}

func (m *Match) View() View {
	v := View{
		ID:         m.ID,
		Phase:      m.Phase,
		Turn:       m.Turn,
		TurnHolder: m.turnHolder,
		Deleted:    m.deleted,
		Seats:      make([]SeatView, 0, len(m.Roster)),
	}
	if host := m.Host(); host != nil {
		v.Host = host.PlayerID
	}
	for _, s := range m.Roster {
		v.Seats = append(v.Seats, SeatView{
			PlayerID:  s.PlayerID,
			Connected: s.Connected(),
			Score:     s.Score,
			Ready:     s.Ready,
			Defeated:  s.Defeated,
			Placed:    s.Board.PlacedCount(),
		})
	}
	return v
}

// Winner is the last undefeated seat of a concluded match.
func (v View) Winner() string {
	if v.Phase != PhaseConcluded {
		return ""
	}
	for _, s := range v.Seats {
		if !s.Defeated {
			return s.PlayerID
		}
	}
	return ""
}
