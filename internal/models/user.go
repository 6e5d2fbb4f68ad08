package models

import (
	"time"
)

// Role determines what a user is allowed to do. There are exactly two roles:
// agents list properties and receive leads, the single admin moderates listings.
type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User represents an account in the system.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	Role         Role      `bson:"role" json:"role"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Store hash, not plaintext
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// AgentSummary is a directory row returned by the admin agent search:
// the agent record enriched with per-status property counts.
type AgentSummary struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	CreatedAt          time.Time `json:"created_at"`
	TotalProperties    int64     `json:"total_properties"`
	PendingProperties  int64     `json:"pending_properties"`
	ApprovedProperties int64     `json:"approved_properties"`
}
