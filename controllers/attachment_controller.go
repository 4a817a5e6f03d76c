package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
	"github.com/helpdesk-kit/support-desk-api/utils"
)

// AttachmentController handles ticket attachment uploads
type AttachmentController struct {
	tickets     *services.TicketService
	attachments services.AttachmentService
}

// NewAttachmentController creates a new attachment controller
func NewAttachmentController(tickets *services.TicketService, attachments services.AttachmentService) *AttachmentController {
	return &AttachmentController{tickets: tickets, attachments: attachments}
}

// Upload handles POST /api/v1/tickets/:id/attachment - attaches a PNG
// image to a ticket the caller can access.
func (ctl *AttachmentController) Upload(c *gin.Context) {
	if ctl.attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ATTACHMENTS_UNAVAILABLE",
				"message": "Attachment storage is not configured",
			},
		})
		return
	}

	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
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
				"message": "You do not have access to this ticket",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No image file provided",
			},
		})
		return
	}

	s3Key, err := ctl.attachments.UploadAttachment(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to upload attachment",
			},
		})
		return
	}

	ticket, err = ctl.tickets.SetAttachment(id, s3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to save attachment",
			},
		})
		return
	}

	if url, err := ctl.attachments.GetAttachmentURL(s3Key); err == nil && url != "" {
		ticket.AttachmentURL = &url
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ticket,
	})
}
