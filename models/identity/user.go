package identity

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             int64           `json:"id" db:"id" gorm:"primary_key"`
	FirstName      string          `json:"firstName" db:"first_name"`
	LastName       string          `json:"lastName" db:"last_name"`
	Email          string          `json:"email" db:"email"`
	Nickname       *string         `json:"nickname,omitempty" db:"nickname"`
	Age            int32           `json:"age" db:"age"`
	Score          *float64        `json:"score,omitempty" db:"score"`
	LoginCount     uint32          `json:"loginCount" db:"login_count"`
	Balance        decimal.Decimal `json:"balance" db:"balance" gorm:"type:numeric(12,2)"`
	BirthDate      *time.Time      `json:"birthDate,omitempty" db:"birth_date"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	IsActive       bool            `json:"isActive" db:"is_active"`
	EmailConfirmed *bool           `json:"emailConfirmed,omitempty" db:"email_confirmed"`
	Role           Role            `json:"role" db:"role"`
	TeamID         *int64          `json:"teamId,omitempty" db:"team_id"`
	Team           *Team           `json:"team,omitempty" db:"-" gorm:"foreignkey:TeamID"`
}

func (User) TableName() string { return "users" }

// FullName is the display name used for name sorting.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
