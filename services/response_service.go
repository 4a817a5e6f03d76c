package services

import (
	"strings"

	"github.com/helpdesk-kit/support-desk-api/models"
	"gorm.io/gorm"
)

// ResponseService manages the append-only responses attached to tickets.
// Access control on the parent ticket is the controller's responsibility;
// this service only checks that the ticket exists.
type ResponseService struct {
	db *gorm.DB
}

// NewResponseService creates a new response service instance
func NewResponseService(db *gorm.DB) *ResponseService {
	return &ResponseService{db: db}
}

// Create appends a response to an existing ticket
func (s *ResponseService) Create(ticketID uint, body string, authorID uint) (*models.Response, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrMissingFields
	}

	// Verify the parent ticket exists
	var count int64
	if err := s.db.Model(&models.Ticket{}).Where("id = ?", ticketID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTicketNotFound
	}

	response := models.Response{
		TicketID: ticketID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.db.Create(&response).Error; err != nil {
		return nil, err
	}

	// Load the author relationship to return complete data
	if err := s.db.Preload("Author").Preload("Author.Role").First(&response, response.ID).Error; err != nil {
		return nil, err
	}

	return &response, nil
}

// ListByTicket returns a ticket's responses oldest first, with author
// display fields loaded for chronological reading.
func (s *ResponseService) ListByTicket(ticketID uint) ([]models.Response, error) {
	var count int64
	if err := s.db.Model(&models.Ticket{}).Where("id = ?", ticketID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTicketNotFound
	}

	var responses []models.Response
	err := s.db.Where("ticket_id = ?", ticketID).
		Preload("Author").Preload("Author.Role").
		Order("created_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}
