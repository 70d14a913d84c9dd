package accounts

import (
	"time"

	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Account represents an authenticated actor. At most one account may
// link to a given resident record. Deactivation is a reversible flag,
// never a deletion.
type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         roles.Role `json:"role"`
	PersonID     *string    `json:"person_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Actor converts the account into the acting-account value passed to
// workflow operations.
func (a Account) Actor() shared.Actor {
	return shared.Actor{
		AccountID: a.ID,
		Username:  a.Username,
		Role:      a.Role,
		PersonID:  a.PersonID,
		Active:    a.IsActive,
	}
}
