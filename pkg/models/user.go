package models

import "time"

// RoleAdmin is the role assigned to seeded users by default.
const RoleAdmin = "admin"

// User is a stored credential record. Only the bcrypt hash of the password is kept.
// Jobs lists the job ids the user submitted at seeding time and is informational only.
type User struct {
	Username     string    `db:"username"      json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role"          json:"role"`
	Jobs         []string  `db:"jobs"          json:"jobs"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}
