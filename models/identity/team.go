package identity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Team struct {
	ID         int64           `json:"id" db:"id" gorm:"primary_key"`
	Name       string          `json:"name" db:"name"`
	Plan       Plan            `json:"plan" db:"plan"`
	SeatLimit  uint16          `json:"seatLimit" db:"seat_limit"`
	MonthlyFee decimal.Decimal `json:"monthlyFee" db:"monthly_fee" gorm:"type:numeric(10,2)"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	ArchivedAt *time.Time      `json:"archivedAt,omitempty" db:"archived_at"`
}

func (Team) TableName() string { return "teams" }
