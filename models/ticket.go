package models

import (
	"time"
)

// TicketStatus is the ticket state enum
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether the status is one of the three legal values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket represents a support ticket in the system
type Ticket struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	Description     string       `gorm:"type:text;not null" json:"description"`
	Status          TicketStatus `gorm:"type:varchar(32);not null;default:'open';index" json:"status"`
	CreatorID       uint         `gorm:"not null;index" json:"creator_id"` // immutable after creation
	Creator         User         `gorm:"foreignKey:CreatorID" json:"creator"`
	AssigneeID      *uint        `gorm:"index" json:"assignee_id"` // nullable, set once by the claim rule
	Assignee        *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	AttachmentS3Key *string      `json:"attachment_s3_key,omitempty"`       // nullable, S3 key for uploaded image
	AttachmentURL   *string      `gorm:"-" json:"attachment_url,omitempty"` // computed field, presigned URL
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the Ticket model
func (Ticket) TableName() string {
	return "tickets"
}
