package domain

type Role string

const (
	RoleWaiter  Role = "WAITER"
	RoleCook    Role = "COOK"
	RoleManager Role = "MANAGER"
)

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// FullName is the display name used to key waiter statistics.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
