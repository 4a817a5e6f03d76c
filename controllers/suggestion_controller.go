package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
)

// SuggestionController handles AI reply suggestions for support agents
type SuggestionController struct {
	tickets   *services.TicketService
	suggester services.Suggester
}

// NewSuggestionController creates a new suggestion controller
func NewSuggestionController(tickets *services.TicketService, suggester services.Suggester) *SuggestionController {
	return &SuggestionController{
		tickets:   tickets,
		suggester: suggester,
	}
}

// Get handles GET /api/v1/tickets/:id/suggestions. Gated to support and
// admin at the route; the access policy is checked on top of that.
func (ctl *SuggestionController) Get(c *gin.Context) {
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
				"message": "You do not have permission to access this ticket",
			},
		})
		return
	}

	suggestions, err := ctl.suggester.SuggestReplies(ticket)
	if err != nil {
		// Upstream failure degrades to an error response, never a crash,
		// and no internal detail leaks to the caller
		log.Printf("suggestion generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPSTREAM_ERROR",
				"message": "Could not generate reply suggestions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    suggestions,
	})
}
