package models

import "time"

// DailyQuest is a recurring timed quest. A quest is active for 24 hours
// starting at Date.
type DailyQuest struct {
	ID          int64     `db:"id"`
	Date        time.Time `db:"date"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}
