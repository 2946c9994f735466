package model

import "github.com/google/uuid"

// Role is contextual: it is computed per market/kandang from membership state
// and never stored on the user.
type Role string

const (
	RoleHeadOwner Role = "head_owner"
	RoleCoOwner   Role = "co_owner"
	RoleInvestor  Role = "investor"
	RoleNone      Role = "none"
)

// MemberView is one entry of a market's member list, tagged with the role
// the user resolves to inside that market.
type MemberView struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	Role     Role      `json:"role"`
}
