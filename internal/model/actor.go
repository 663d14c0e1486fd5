package model

type Role string

const (
	RoleClient Role = "client"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

// Actor identifies who is performing an operation. The engine enforces
// role preconditions; it does not authenticate; that happens upstream.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
