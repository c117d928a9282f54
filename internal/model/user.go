package model

import "time"

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json tags
// are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types so the password
// hash can never leak into a JSON body by accident.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FullName     – display name, at least three characters.
//  Age          – non-negative age in years.
//  Email        – unique email address, stored lowercased.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	FullName     string    // users.full_name
	Age          int       // users.age
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
