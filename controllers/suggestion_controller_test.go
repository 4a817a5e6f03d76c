package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
	"github.com/stretchr/testify/assert"
)

func TestGetSuggestionsEndpoint(t *testing.T) {
	db := setupTestDB(t)
	tickets := services.NewTicketService(db)
	client := seedUser(t, db, "Client", "client@example.com", models.RoleClient)
	support := seedUser(t, db, "Support", "support@example.com", models.RoleSupport)

	ticket, err := tickets.Create("Cannot log in", "Login page shows a 500", client.ID)
	assert.NoError(t, err)

	suggester := &services.MockSuggester{
		Suggestions: []services.Suggestion{
			{ID: 1, Text: "First draft reply."},
			{ID: 2, Text: "Second draft reply."},
			{ID: 3, Text: "Third draft reply."},
		},
	}
	ctl := NewSuggestionController(tickets, suggester)

	router := setupTestRouter()
	router.GET("/tickets/:id/suggestions", asUser(support), ctl.Get)

	w, response := doJSON(t, router, http.MethodGet, fmt.Sprintf("/tickets/%d/suggestions", ticket.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := response["data"].([]interface{})
	assert.Len(t, data, 3)
	first := data[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "First draft reply.", first["text"])
}

func TestGetSuggestionsEndpoint_UpstreamFailure(t *testing.T) {
	db := setupTestDB(t)
	tickets := services.NewTicketService(db)
	client := seedUser(t, db, "Client", "client@example.com", models.RoleClient)
	support := seedUser(t, db, "Support", "support@example.com", models.RoleSupport)

	ticket, err := tickets.Create("Cannot log in", "Login page shows a 500", client.ID)
	assert.NoError(t, err)

	suggester := &services.MockSuggester{Err: errors.New("model endpoint is down")}
	ctl := NewSuggestionController(tickets, suggester)

	router := setupTestRouter()
	router.GET("/tickets/:id/suggestions", asUser(support), ctl.Get)

	w, response := doJSON(t, router, http.MethodGet, fmt.Sprintf("/tickets/%d/suggestions", ticket.ID), nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "UPSTREAM_ERROR", errorCode(t, response))

	// The upstream detail never leaks to the caller
	assert.NotContains(t, w.Body.String(), "model endpoint is down")
}

func TestGetSuggestionsEndpoint_AccessChecks(t *testing.T) {
	db := setupTestDB(t)
	tickets := services.NewTicketService(db)
	client := seedUser(t, db, "Client", "client@example.com", models.RoleClient)
	support := seedUser(t, db, "Support", "support@example.com", models.RoleSupport)
	rival := seedUser(t, db, "Rival Support", "rival@example.com", models.RoleSupport)

	ticket, err := tickets.Create("Cannot log in", "Login page shows a 500", client.ID)
	assert.NoError(t, err)
	_, err = tickets.Claim(ticket.ID, support.ID)
	assert.NoError(t, err)

	ctl := NewSuggestionController(tickets, &services.MockSuggester{
		Suggestions: []services.Suggestion{{ID: 1, Text: "A reply."}},
	})

	getAs := func(user models.User, id string) int {
		router := setupTestRouter()
		router.GET("/tickets/:id/suggestions", asUser(user), ctl.Get)
		w, _ := doJSON(t, router, http.MethodGet, "/tickets/"+id+"/suggestions", nil)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, getAs(support, fmt.Sprint(ticket.ID)))
	assert.Equal(t, http.StatusForbidden, getAs(rival, fmt.Sprint(ticket.ID)))
	assert.Equal(t, http.StatusNotFound, getAs(support, "9999"))
}
