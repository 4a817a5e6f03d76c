package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
)

// CreateResponseRequest represents the request body for adding a response
type CreateResponseRequest struct {
	Body string `json:"body" binding:"required"`
}

// ResponseController handles the per-ticket response endpoints
type ResponseController struct {
	responses *services.ResponseService
	tickets   *services.TicketService
	notifier  *services.NotificationService
}

// NewResponseController creates a new response controller
func NewResponseController(responses *services.ResponseService, tickets *services.TicketService, notifier *services.NotificationService) *ResponseController {
	return &ResponseController{
		responses: responses,
		tickets:   tickets,
		notifier:  notifier,
	}
}

// loadAccessibleTicket fetches the parent ticket and enforces the access
// policy, writing the error response itself when the caller may not
// proceed.
func (ctl *ResponseController) loadAccessibleTicket(c *gin.Context) (*models.Ticket, *middleware.AuthUser, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, nil, false
	}

	id, ok := ticketIDParam(c)
	if !ok {
		return nil, nil, false
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
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch ticket",
			},
		})
		return nil, nil, false
	}

	if !models.CanAccessTicket(ticket, user.ID, user.Role) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to access this ticket",
			},
		})
		return nil, nil, false
	}

	return ticket, user, true
}

// Create handles POST /api/v1/tickets/:id/responses
func (ctl *ResponseController) Create(c *gin.Context) {
	ticket, user, ok := ctl.loadAccessibleTicket(c)
	if !ok {
		return
	}

	var req CreateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Response body is required",
			},
		})
		return
	}

	response, err := ctl.responses.Create(ticket.ID, req.Body, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Response body is required",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to create response",
			},
		})
		return
	}

	go ctl.notifier.ResponseAdded(ticket, response)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    response,
	})
}

// List handles GET /api/v1/tickets/:id/responses - oldest first
func (ctl *ResponseController) List(c *gin.Context) {
	ticket, _, ok := ctl.loadAccessibleTicket(c)
	if !ok {
		return
	}

	responses, err := ctl.responses.ListByTicket(ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to fetch responses",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
	})
}
