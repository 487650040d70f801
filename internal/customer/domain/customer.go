package domain

import (
	"time"

	"github.com/dmehra2102/shopease/internal/platform/apperr"
)

type Membership string

const (
	MembershipBronze Membership = "B"
	MembershipSilver Membership = "S"
	MembershipGold   Membership = "G"
)

func (m Membership) Valid() bool {
	switch m {
	case MembershipBronze, MembershipSilver, MembershipGold:
		return true
	}
	return false
}

var ErrCustomerNotFound = apperr.NotFound("customer not found")

// Customer is the store profile attached to an identity principal. There is
// at most one per UserID.
type Customer struct {
	ID         int64
	UserID     string
	Phone      string
	BirthDate  *time.Time
	Membership Membership
}

// Profile carries the fields a customer may change about themselves.
type Profile struct {
	Phone      string
	BirthDate  *time.Time
	Membership Membership
}

func (p Profile) Validate() error {
	if !p.Membership.Valid() {
		return apperr.Validation("membership must be one of B, S, G")
	}
	if len(p.Phone) > 255 {
		return apperr.Validation("phone must be at most 255 characters")
	}
	if p.BirthDate != nil && p.BirthDate.After(time.Now()) {
		return apperr.Validation("birth_date cannot be in the future")
	}
	return nil
}
