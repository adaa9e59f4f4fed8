package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User mirrors an account at the external identity provider; Subject is the
// provider's stable user identifier from the token's sub claim. TenantID is
// nil for platform admins.
type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Subject   string     `json:"subject" db:"subject"`
	Email     string     `json:"email" db:"email"`
	Name      string     `json:"name" db:"name"`
	Role      string     `json:"role" db:"role"`
	TenantID  *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
