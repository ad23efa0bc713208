package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuildFightStatus tracks the lifecycle of a clan-vs-clan contest.
type GuildFightStatus int

const (
	// GuildFightStatusInProgress marks a fight that has not concluded. Any
	// other status means the fight is settled.
	GuildFightStatusInProgress GuildFightStatus = 1
	// GuildFightStatusWon and GuildFightStatusLost are decisive outcomes.
	GuildFightStatusWon  GuildFightStatus = 2
	GuildFightStatusLost GuildFightStatus = 3
	// GuildFightStatusDraw pays loser points to both sides.
	GuildFightStatusDraw GuildFightStatus = 4
)

// GuildFight is a clan-vs-clan contest whose settlement grants one
// manager action per participant.
type GuildFight struct {
	ID           int64            `db:"id"`
	Status       GuildFightStatus `db:"status"`
	PointsWinner decimal.Decimal  `db:"points_winner"`
	PointsLoser  decimal.Decimal  `db:"points_loser"`
	ManagerID    *int64           `db:"manager_id"`
	Opponent     string           `db:"opponent"`
	CreatedAt    time.Time        `db:"created_at"`
}

// Concluded reports whether the fight has been settled.
func (f *GuildFight) Concluded() bool {
	return f.Status != GuildFightStatusInProgress
}

// GuildFightParticipation links one account to one side of a fight.
type GuildFightParticipation struct {
	ID        int64 `db:"id"`
	FightID   int64 `db:"fight_id"`
	AccountID int64 `db:"account_id"`
	Winner    bool  `db:"winner"`
}

// GuildFightDetail is a fight with its participations loaded.
type GuildFightDetail struct {
	Fight          *GuildFight
	Participations []*GuildFightParticipation
}

// WinnerParticipations returns the participations on the winning side.
func (d *GuildFightDetail) WinnerParticipations() []*GuildFightParticipation {
	var out []*GuildFightParticipation
	for _, p := range d.Participations {
		if p.Winner {
			out = append(out, p)
		}
	}
	return out
}

// LoserParticipations returns the participations on the losing side.
func (d *GuildFightDetail) LoserParticipations() []*GuildFightParticipation {
	var out []*GuildFightParticipation
	for _, p := range d.Participations {
		if !p.Winner {
			out = append(out, p)
		}
	}
	return out
}
