package model

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// Actor is the authenticated caller as supplied by the identity gateway.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

func (a Actor) IsProvider() bool { return a.Role == RoleProvider }
