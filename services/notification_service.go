package services

import (
	"fmt"
	"log"

	"github.com/helpdesk-kit/support-desk-api/models"
	"gorm.io/gorm"
)

// notifyAttempts bounds delivery retries for one notification
const notifyAttempts = 2

// NotificationService sends email notifications for ticket events. Every
// method here is advisory: it is called after the primary write has
// committed, failures are logged and never propagate to the caller, and
// nothing it does can roll back or block the primary response.
type NotificationService struct {
	db     *gorm.DB
	mailer Mailer
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(db *gorm.DB, mailer Mailer) *NotificationService {
	return &NotificationService{db: db, mailer: mailer}
}

// TicketCreated notifies all support and admin users about a new ticket
func (n *NotificationService) TicketCreated(ticket *models.Ticket) {
	recipients, err := n.emailsByRole(models.RoleSupport, models.RoleAdmin)
	if err != nil {
		log.Printf("notification skipped, recipient lookup failed: %v", err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("New Ticket #%d: %s", ticket.ID, ticket.Title)
	body := fmt.Sprintf(`<h2>New Ticket Created</h2>
<p><strong>Ticket #%d</strong></p>
<p><strong>Title:</strong> %s</p>
<p><strong>Description:</strong> %s</p>
<p><strong>Created by:</strong> %s (%s)</p>`,
		ticket.ID, ticket.Title, ticket.Description, ticket.Creator.Name, ticket.Creator.Email)

	n.deliver(recipients, subject, body)
}

// TicketAssigned notifies the assignee that a ticket is now theirs
func (n *NotificationService) TicketAssigned(ticket *models.Ticket) {
	if ticket.Assignee == nil {
		return
	}

	subject := fmt.Sprintf("Ticket #%d assigned to you: %s", ticket.ID, ticket.Title)
	body := fmt.Sprintf(`<h2>Ticket Assigned</h2>
<p><strong>Ticket #%d</strong></p>
<p><strong>Title:</strong> %s</p>
<p><strong>Status:</strong> %s</p>`,
		ticket.ID, ticket.Title, ticket.Status)

	n.deliver([]string{ticket.Assignee.Email}, subject, body)
}

// StatusChanged notifies the ticket creator of a status transition
func (n *NotificationService) StatusChanged(ticket *models.Ticket, oldStatus models.TicketStatus) {
	subject := fmt.Sprintf("Ticket #%d status changed: %s", ticket.ID, ticket.Title)
	body := fmt.Sprintf(`<h2>Status Updated</h2>
<p><strong>Ticket #%d:</strong> %s</p>
<p><strong>Status:</strong> %s &rarr; %s</p>`,
		ticket.ID, ticket.Title, oldStatus, ticket.Status)

	n.deliver([]string{ticket.Creator.Email}, subject, body)
}

// ResponseAdded notifies the creator and the assignee about a new
// response, skipping whoever wrote it.
func (n *NotificationService) ResponseAdded(ticket *models.Ticket, response *models.Response) {
	var recipients []string
	if ticket.Creator.ID != response.AuthorID {
		recipients = append(recipients, ticket.Creator.Email)
	}
	if ticket.Assignee != nil && ticket.Assignee.ID != response.AuthorID {
		recipients = append(recipients, ticket.Assignee.Email)
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("New response on Ticket #%d: %s", ticket.ID, ticket.Title)
	body := fmt.Sprintf(`<h2>New Response</h2>
<p><strong>Ticket #%d:</strong> %s</p>
<p><strong>From:</strong> %s</p>
<p>%s</p>`,
		ticket.ID, ticket.Title, response.Author.Name, response.Body)

	n.deliver(recipients, subject, body)
}

// emailsByRole returns the addresses of every user holding any of the
// given roles.
func (n *NotificationService) emailsByRole(roles ...models.RoleName) ([]string, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	var emails []string
	err := n.db.Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name IN ?", names).
		Pluck("users.email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

// deliver sends one message with a bounded retry. Failures are logged and
// swallowed; that is the policy for advisory side effects, not an
// accidental omission.
func (n *NotificationService) deliver(to []string, subject, body string) {
	var err error
	for attempt := 0; attempt < notifyAttempts; attempt++ {
		if err = n.mailer.Send(to, subject, body); err == nil {
			return
		}
	}
	log.Printf("notification delivery failed after %d attempts: %v", notifyAttempts, err)
}
