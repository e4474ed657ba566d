package constants

// Role names as carried in the JWT claims. RoleAdmin is the top administrative
// role of a tenant: it bypasses the inactive-academic-year write restriction.
const (
	RoleAdmin      = "admin"
	RolePromoter   = "promoter"
	RoleDirector   = "director"
	RoleAccountant = "accountant"
	RoleSecretary  = "secretary"
	RoleTeacher    = "teacher"
)

func RoleIn(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
