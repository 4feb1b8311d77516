package service

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == tokens.RoleAdmin
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || (a.UserID != uuid.Nil && a.UserID == ownerID)
}
