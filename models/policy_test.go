package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	creatorID uint = 1
	supportID uint = 2
	otherID   uint = 99
)

func ticketWith(status TicketStatus, assigneeID *uint) *Ticket {
	return &Ticket{
		ID:          10,
		Title:       "Cannot log in",
		Description: "The login page rejects my password",
		Status:      status,
		CreatorID:   creatorID,
		AssigneeID:  assigneeID,
	}
}

// TestCanAccessTicketEnumeration exhaustively checks the access predicate
// across role x assignment x status combinations.
func TestCanAccessTicketEnumeration(t *testing.T) {
	assigned := supportID
	statuses := []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}
	assignments := []*uint{nil, &assigned}

	for _, status := range statuses {
		for _, assignee := range assignments {
			ticket := ticketWith(status, assignee)
			label := fmt.Sprintf("status=%s assigned=%v", status, assignee != nil)

			// Admin always has access
			assert.True(t, CanAccessTicket(ticket, otherID, RoleAdmin), "admin: %s", label)

			// Client has access iff they created the ticket
			assert.True(t, CanAccessTicket(ticket, creatorID, RoleClient), "creator client: %s", label)
			assert.False(t, CanAccessTicket(ticket, otherID, RoleClient), "other client: %s", label)

			// Support has access iff assigned to them, or unassigned and still open
			wantAssignee := assignee != nil || status == TicketStatusOpen
			assert.Equal(t, wantAssignee, CanAccessTicket(ticket, supportID, RoleSupport),
				"assignee support: %s", label)

			wantOtherSupport := assignee == nil && status == TicketStatusOpen
			assert.Equal(t, wantOtherSupport, CanAccessTicket(ticket, otherID, RoleSupport),
				"other support: %s", label)
		}
	}
}

func TestCanAccessTicketUnknownRole(t *testing.T) {
	ticket := ticketWith(TicketStatusOpen, nil)

	assert.False(t, CanAccessTicket(ticket, creatorID, RoleName("superuser")),
		"unknown roles must be denied, not coerced")
	assert.False(t, CanAccessTicket(ticket, creatorID, RoleName("")),
		"empty role must be denied")
}

func TestRoleNameValid(t *testing.T) {
	assert.True(t, RoleClient.Valid())
	assert.True(t, RoleSupport.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, RoleName("administrator").Valid())
	assert.False(t, RoleName("").Valid())
}

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, TicketStatusOpen.Valid())
	assert.True(t, TicketStatusInProgress.Valid())
	assert.True(t, TicketStatusClosed.Valid())
	assert.False(t, TicketStatus("archived").Valid())
	assert.False(t, TicketStatus("").Valid())
}
