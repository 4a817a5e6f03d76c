package acceptance

import (
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// WorkflowAcceptanceTestSuite walks the whole support workflow end to
// end: a client files a ticket, support picks it up, both sides talk,
// and the ticket gets resolved.
type WorkflowAcceptanceTestSuite struct {
	suite.Suite
	api *testutil.API
}

func (suite *WorkflowAcceptanceTestSuite) SetupSuite() {
	os.Setenv("GO_ENV", "test")
}

func (suite *WorkflowAcceptanceTestSuite) SetupTest() {
	suite.api = testutil.NewAPI(suite.T())
}

func (suite *WorkflowAcceptanceTestSuite) TestFullSupportWorkflow() {
	t := suite.T()

	// A client registers and files a ticket
	clientToken := suite.api.Register(t, "Carol Client", "carol@example.com", "password123")

	w, response := suite.api.Do(t, http.MethodPost, "/api/v1/tickets", clientToken, map[string]interface{}{
		"title":       "Cannot log in",
		"description": "The login page shows a 500 error since this morning",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	ticket := response["data"].(map[string]interface{})
	ticketID := ticket["id"].(float64)
	suite.Equal("open", ticket["status"])

	// A support agent logs in and sees the open ticket in their queue
	supportToken := suite.api.RegisterAs(t, "Sam Support", "sam@example.com", "password123", models.RoleSupport)

	w, response = suite.api.Do(t, http.MethodGet, "/api/v1/tickets", supportToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	queue := response["data"].([]interface{})
	suite.Require().Len(queue, 1)
	suite.Equal("Cannot log in", queue[0].(map[string]interface{})["title"])

	// The agent claims the ticket
	w, response = suite.api.Do(t, http.MethodPatch, fmt.Sprintf("/api/v1/tickets/%.0f/assign", ticketID), supportToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("in_progress", response["data"].(map[string]interface{})["status"])

	// A second agent arrives late and loses the claim race
	rivalToken := suite.api.RegisterAs(t, "Riley Rival", "riley@example.com", "password123", models.RoleSupport)
	w, response = suite.api.Do(t, http.MethodPatch, fmt.Sprintf("/api/v1/tickets/%.0f/assign", ticketID), rivalToken, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("ALREADY_ASSIGNED", response["error"].(map[string]interface{})["code"])

	// The assignee replies, the client answers back
	w, _ = suite.api.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%.0f/responses", ticketID), supportToken,
		map[string]interface{}{"body": "We are looking into the login failures now."})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w, _ = suite.api.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%.0f/responses", ticketID), clientToken,
		map[string]interface{}{"body": "Thanks, it is still failing for me."})
	suite.Require().Equal(http.StatusCreated, w.Code)

	// The client reads the conversation in order
	w, response = suite.api.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/tickets/%.0f/responses", ticketID), clientToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	thread := response["data"].([]interface{})
	suite.Require().Len(thread, 2)
	suite.Contains(thread[0].(map[string]interface{})["body"], "looking into")
	suite.Contains(thread[1].(map[string]interface{})["body"], "still failing")

	// The agent closes the ticket
	w, response = suite.api.Do(t, http.MethodPatch, fmt.Sprintf("/api/v1/tickets/%.0f/status", ticketID), supportToken,
		map[string]interface{}{"status": "closed"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("closed", response["data"].(map[string]interface{})["status"])

	// The client still sees their closed ticket
	w, response = suite.api.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/tickets/%.0f", ticketID), clientToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("closed", response["data"].(map[string]interface{})["status"])

	// The rival agent no longer sees it in their queue
	w, response = suite.api.Do(t, http.MethodGet, "/api/v1/tickets", rivalToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(response["data"].([]interface{}))
}

func (suite *WorkflowAcceptanceTestSuite) TestStrangerCannotReadTheThread() {
	t := suite.T()

	clientToken := suite.api.Register(t, "Carol Client", "carol@example.com", "password123")
	w, response := suite.api.Do(t, http.MethodPost, "/api/v1/tickets", clientToken, map[string]interface{}{
		"title":       "Private problem",
		"description": "Details only support should see",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	ticketID := response["data"].(map[string]interface{})["id"].(float64)

	strangerToken := suite.api.Register(t, "Eve Stranger", "eve@example.com", "password123")

	w, _ = suite.api.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/tickets/%.0f", ticketID), strangerToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.api.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/tickets/%.0f/responses", ticketID), strangerToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.api.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%.0f/responses", ticketID), strangerToken,
		map[string]interface{}{"body": "let me in"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestWorkflowAcceptanceTestSuite(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	suite.Run(t, new(WorkflowAcceptanceTestSuite))
}
