package models

import (
	"time"
)

// PropertyStatus drives the listing lifecycle. Every property starts out
// pending; only an admin moves it to approved or rejected. Rejected is
// terminal.
type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusApproved PropertyStatus = "approved"
	PropertyStatusRejected PropertyStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s PropertyStatus) Valid() bool {
	return s == PropertyStatusPending || s == PropertyStatusApproved || s == PropertyStatusRejected
}

// Property represents a rentable unit submitted by an agent.
// AgentName and AgentContact are denormalized from the owning agent at
// creation time so the public card renders without a user lookup.
type Property struct {
	ID           string         `bson:"_id" json:"id"`
	AgentID      string         `bson:"agent_id" json:"agent_id"`
	PropertyType string         `bson:"property_type" json:"property_type"`
	BHK          string         `bson:"bhk" json:"bhk"`
	Furnishing   string         `bson:"furnishing" json:"furnishing"`
	Rent         string         `bson:"rent" json:"rent"`
	Deposit      string         `bson:"deposit" json:"deposit"`
	TenantType   string         `bson:"tenant_type" json:"tenant_type"`
	Possession   string         `bson:"possession" json:"possession"`
	Building     string         `bson:"building" json:"building"`
	Location     string         `bson:"location" json:"location"`
	AgentName    string         `bson:"agent_name" json:"agent_name"`
	AgentContact string         `bson:"agent_contact" json:"agent_contact"`
	Images       []string       `bson:"images" json:"images"`
	Description  string         `bson:"description,omitempty" json:"description,omitempty"`
	Status       PropertyStatus `bson:"status" json:"status"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	ApprovedAt   *time.Time     `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
}
