package models

import (
	"time"
)

// LeadStatus is the workflow state of a lead. Leads are created as "new";
// no further transitions are modeled.
type LeadStatus string

const (
	LeadStatusNew LeadStatus = "new"
)

// Lead represents a client inquiry captured against a property.
// AgentID is copied from the referenced property's owner at creation time.
type Lead struct {
	ID           string     `bson:"_id" json:"id"`
	PropertyID   string     `bson:"property_id" json:"property_id"`
	AgentID      string     `bson:"agent_id" json:"agent_id"`
	ClientName   string     `bson:"client_name" json:"client_name"`
	ClientPhone  string     `bson:"client_phone" json:"client_phone"`
	Requirements string     `bson:"requirements" json:"requirements"`
	Status       LeadStatus `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
}
