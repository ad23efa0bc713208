package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointsAccount holds a clan member's running point balance and Elo rating.
// CurrentPoints is derived entirely from submission history and is only
// written by the ledger recomputation.
type PointsAccount struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	CurrentPoints decimal.Decimal `db:"current_points"`
	Elo           float64         `db:"elo"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
