package services

import (
	"errors"
	"strings"
	"time"

	"github.com/helpdesk-kit/support-desk-api/models"
	"gorm.io/gorm"
)

// StatusCount is the number of tickets in one status
type StatusCount struct {
	Status models.TicketStatus `json:"status"`
	Count  int64               `json:"count"`
}

// CreatorCount is the number of tickets filed by one user
type CreatorCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DailyCount is the number of tickets created on one day
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TicketStats aggregates the admin dashboard numbers
type TicketStats struct {
	ByStatus  []StatusCount  `json:"by_status"`
	ByCreator []CreatorCount `json:"by_creator"`
	Timeline  []DailyCount   `json:"timeline"`
}

// TicketService implements the ticket lifecycle on top of the relational
// store. Concurrency safety of the claim operation relies entirely on the
// store's atomic conditional update.
type TicketService struct {
	db *gorm.DB
}

// NewTicketService creates a new ticket service instance
func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// Create inserts a new ticket with status open and no assignee
func (s *TicketService) Create(title, description string, creatorID uint) (*models.Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, ErrMissingFields
	}

	ticket := models.Ticket{
		Title:       title,
		Description: description,
		Status:      models.TicketStatusOpen,
		CreatorID:   creatorID,
	}
	if err := s.db.Create(&ticket).Error; err != nil {
		return nil, err
	}

	return s.GetByID(ticket.ID)
}

// GetByID retrieves a ticket with creator and assignee loaded
func (s *TicketService) GetByID(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Preload("Creator").Preload("Creator.Role").
		Preload("Assignee").Preload("Assignee.Role").
		First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// ListForUser returns the tickets visible to a user under the access
// policy, newest first. The visibility rule is pushed into the query
// rather than filtered in memory.
func (s *TicketService) ListForUser(userID uint, role models.RoleName) ([]models.Ticket, error) {
	query := s.db.Preload("Creator").Preload("Assignee").Order("created_at DESC")

	switch role {
	case models.RoleAdmin:
		// no filter: admins see everything
	case models.RoleSupport:
		query = query.Where("assignee_id = ? OR (status = ? AND assignee_id IS NULL)",
			userID, models.TicketStatusOpen)
	case models.RoleClient:
		query = query.Where("creator_id = ?", userID)
	default:
		return []models.Ticket{}, nil
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// Claim assigns an unassigned open ticket to a support user and moves it
// to in_progress. The conditional update is a single atomic statement: if
// two actors race, at most one sees a row affected and the loser gets
// ErrTicketAlreadyAssigned.
func (s *TicketService) Claim(id, userID uint) (*models.Ticket, error) {
	result := s.db.Model(&models.Ticket{}).
		Where("id = ? AND assignee_id IS NULL AND status = ?", id, models.TicketStatusOpen).
		Updates(map[string]interface{}{
			"assignee_id": userID,
			"status":      models.TicketStatusInProgress,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Zero rows: either the ticket doesn't exist, or someone else
		// claimed it first. Tell those apart for the caller.
		var exists int64
		if err := s.db.Model(&models.Ticket{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ErrTicketNotFound
		}
		return nil, ErrTicketAlreadyAssigned
	}

	return s.GetByID(id)
}

// SetStatus updates a ticket's status after validating the value against
// the closed enum. Any of the three values may be set by an authorized
// actor; there is no forward-only state machine beyond the claim rule.
func (s *TicketService) SetStatus(id uint, status models.TicketStatus) (*models.Ticket, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var ticket models.Ticket
	if err := s.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&ticket).Update("status", status).Error; err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// SetAttachment records the S3 key of a ticket's uploaded attachment
func (s *TicketService) SetAttachment(id uint, s3Key string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&ticket).Update("attachment_s3_key", s3Key).Error; err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

// Stats runs the three aggregate queries behind the admin dashboard:
// ticket count grouped by status, the ten most frequent creators, and a
// daily count for the trailing 30 days.
func (s *TicketService) Stats() (*TicketStats, error) {
	stats := &TicketStats{
		ByStatus:  []StatusCount{},
		ByCreator: []CreatorCount{},
		Timeline:  []DailyCount{},
	}

	if err := s.db.Model(&models.Ticket{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&stats.ByStatus).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Ticket{}).
		Select("users.name as name, COUNT(tickets.id) as count").
		Joins("JOIN users ON users.id = tickets.creator_id").
		Group("users.id, users.name").
		Order("count DESC").
		Limit(10).
		Scan(&stats.ByCreator).Error; err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.Ticket{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats.Timeline).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
