package models

// User is a row of the users table. Roles live in user_roles and are
// aggregated into Roles by the query.
type User struct {
	UserID       string   `db:"user_id"`
	Email        string   `db:"email"`
	Name         string   `db:"name"`
	PasswordHash string   `db:"password_hash"`
	IsActive     bool     `db:"is_active"`
	Roles        []string `db:"roles"`
	AuditFields
}
