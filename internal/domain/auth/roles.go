package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

var roleRank = map[string]int{
	RoleEmployee: 0,
	RoleManager:  1,
	RoleHR:       2,
	RoleAdmin:    3,
}

// AtLeast reports whether role carries the authority of min or higher.
// Unknown roles rank below employee.
func AtLeast(role, min string) bool {
	rank, ok := roleRank[role]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	EmployeeID   string `json:"employeeId,omitempty"`
}
