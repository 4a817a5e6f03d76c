package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
)

// CreateTicketRequest represents the request body for creating a ticket
type CreateTicketRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TicketController handles the ticket lifecycle endpoints
type TicketController struct {
	tickets     *services.TicketService
	notifier    *services.NotificationService
	attachments services.AttachmentService
}

// NewTicketController creates a new ticket controller
func NewTicketController(tickets *services.TicketService, notifier *services.NotificationService, attachments services.AttachmentService) *TicketController {
	return &TicketController{
		tickets:     tickets,
		notifier:    notifier,
		attachments: attachments,
	}
}

// ticketIDParam parses the :id URL parameter
func ticketIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Ticket ID must be a number",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// Create handles POST /api/v1/tickets
func (ctl *TicketController) Create(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Title and description are required",
			},
		})
		return
	}

	ticket, err := ctl.tickets.Create(req.Title, req.Description, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Title and description are required",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to create ticket",
			},
		})
		return
	}

	// Advisory side effect after the write committed; never blocks the response
	go ctl.notifier.TicketCreated(ticket)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// List handles GET /api/v1/tickets - role-filtered ticket list
func (ctl *TicketController) List(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	tickets, err := ctl.tickets.ListForUser(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch tickets",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tickets,
	})
}

// Get handles GET /api/v1/tickets/:id
func (ctl *TicketController) Get(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	ticket, err := ctl.tickets.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TICKET_NOT_FOUND",
					"message": "Ticket not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch ticket",
			},
		})
		return
	}

	if !models.CanAccessTicket(ticket, user.ID, user.Role) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this ticket",
			},
		})
		return
	}

	ctl.attachURL(ticket)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// Claim handles PATCH /api/v1/tickets/:id/assign - a support user takes
// an unassigned open ticket. Gated to support and admin at the route.
func (ctl *TicketController) Claim(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	ticket, err := ctl.tickets.Claim(id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TICKET_NOT_FOUND",
					"message": "Ticket not found",
				},
			})
		case errors.Is(err, services.ErrTicketAlreadyAssigned):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_ASSIGNED",
					"message": "This ticket has already been assigned",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to assign ticket",
				},
			})
		}
		return
	}

	go ctl.notifier.TicketAssigned(ticket)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// UpdateStatus handles PATCH /api/v1/tickets/:id/status. Gated to
// support and admin at the route.
func (ctl *TicketController) UpdateStatus(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Status is required",
			},
		})
		return
	}

	// Remember the previous status for the notification
	oldTicket, err := ctl.tickets.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TICKET_NOT_FOUND",
					"message": "Ticket not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch ticket",
			},
		})
		return
	}

	ticket, err := ctl.tickets.SetStatus(id, models.TicketStatus(req.Status))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Status must be one of: open, in_progress, closed",
				},
			})
			return
		}
		if errors.Is(err, services.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TICKET_NOT_FOUND",
					"message": "Ticket not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to update status",
			},
		})
		return
	}

	go ctl.notifier.StatusChanged(ticket, oldTicket.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// Stats handles GET /api/v1/tickets/stats - admin-only aggregates
func (ctl *TicketController) Stats(c *gin.Context) {
	stats, err := ctl.tickets.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to compute statistics",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// attachURL fills in the presigned attachment URL on a ticket, if any.
// URL generation failures only lose the link, never the response.
func (ctl *TicketController) attachURL(ticket *models.Ticket) {
	if ticket.AttachmentS3Key == nil || ctl.attachments == nil {
		return
	}
	url, err := ctl.attachments.GetAttachmentURL(*ticket.AttachmentS3Key)
	if err != nil {
		log.Printf("warning: failed to generate attachment URL: %v", err)
		return
	}
	if url != "" {
		ticket.AttachmentURL = &url
	}
}
