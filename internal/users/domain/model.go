package domain

import (
	"strings"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
)

type Role string

const (
	RoleAdmin            Role = "admin"
	RoleProjectManager   Role = "project_manager"
	RoleSeniorArchitect  Role = "senior_architect"
	RoleJuniorArchitect  Role = "junior_architect"
	RoleBudgetSpecialist Role = "budget_specialist"
	RoleCollaborator     Role = "collaborator"
)

// DefaultRole is assigned on first authentication.
const DefaultRole = RoleCollaborator

var Roles = []Role{
	RoleAdmin,
	RoleProjectManager,
	RoleSeniorArchitect,
	RoleJuniorArchitect,
	RoleBudgetSpecialist,
	RoleCollaborator,
}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

var ErrUserNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "user not found"}

// User is identified by the identity provider's uid. Users are never deleted,
// only deactivated, so history rows keep resolving.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	Role            Role      `json:"role"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// UpsertUser carries identity-provider data synced on every authenticated request.
type UpsertUser struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL *string
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
