package domain

// Role is an organizational role held by a user.
type Role string

const (
	RoleAnggota            Role = "ANGGOTA" // Cooperative member
	RoleEmployee           Role = "EMPLOYEE"
	RoleDivisiSimpanPinjam Role = "DIVISI_SIMPAN_PINJAM"
	RoleKetua              Role = "KETUA"
	RoleShopkeeper         Role = "SHOPKEEPER"
	RolePayroll            Role = "PAYROLL"
)

// User is an authenticated actor. Members, approvers and payroll staff are all users.
type User struct {
	UserID       string `json:"userID"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Roles        []Role `json:"roles"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// HasRole reports whether the user holds role.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRoles converts raw role names, dropping empty ones.
func ParseRoles(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		roles = append(roles, Role(r))
	}
	return roles
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Roles  []Role
}

// HasAnyRole reports whether the actor holds at least one of roles.
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, want := range roles {
		for _, have := range a.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
