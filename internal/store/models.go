package store

import (
	"time"

	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

// MatchResult is one concluded match.
type MatchResult struct {
	ID         uint   `gorm:"primaryKey"`
	GameID     string `gorm:"size:16;index;not null"`
	Winner     string `gorm:"not null"`
	Turns      int
	FinishedAt time.Time `gorm:"index"`
	Seats      []SeatResult `gorm:"constraint:OnDelete:CASCADE;"`
}

// SeatResult is the final standing of one seat, in roster order.
type SeatResult struct {
	ID            uint `gorm:"primaryKey"`
	MatchResultID uint `gorm:"index;not null"`
	Position      int
	PlayerID      string `gorm:"not null"`
	Score         int
	Defeated      bool
}

// FromView maps the final view of a concluded match to its stored form.
func FromView(v engine.View, finishedAt time.Time) MatchResult {
	res := MatchResult{
		GameID:     v.ID,
		Winner:     v.Winner(),
		Turns:      v.Turn,
		FinishedAt: finishedAt,
		Seats:      make([]SeatResult, 0, len(v.Seats)),
	}
	for i, s := range v.Seats {
		res.Seats = append(res.Seats, SeatResult{
			Position: i,
			PlayerID: s.PlayerID,
			Score:    s.Score,
			Defeated: s.Defeated,
		})
	}
	return res
}
