package models

import (
	"time"
)

// Response is an append-only comment on a ticket. Rows are never edited
// or deleted after creation.
type Response struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	Ticket    Ticket    `gorm:"foreignKey:TicketID" json:"-"` // don't include full ticket in JSON
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Response model
func (Response) TableName() string {
	return "responses"
}
