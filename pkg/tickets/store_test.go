package tickets

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliobot/pkg/agent"
)

var ticketIDPattern = regexp.MustCompile(`^TIK-\d{8}-[0-9A-F]{8}$`)

func validTicketData() map[string]any {
	return map[string]any{
		"title":       "API rate limiting issue",
		"description": "Quote service returning 429 errors during market hours",
		"category":    "technical",
		"requester":   "alice@company.com",
		"priority":    "high",
		"tags":        "api,urgent",
	}
}

func newTestStore() *Store {
	s := NewStore()
	s.now = func() time.Time { return time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateTicket(t *testing.T) {
	s := newTestStore()

	ticket, err := s.Create(validTicketData())
	require.NoError(t, err)

	assert.Regexp(t, ticketIDPattern, ticket.ID)
	assert.Contains(t, ticket.ID, "TIK-20250113-")
	assert.Equal(t, "open", ticket.Status)
	assert.Equal(t, "high", ticket.Priority)
	assert.Equal(t, []string{"api", "urgent"}, ticket.Tags)
}

func TestCreateDefaultsPriorityToMedium(t *testing.T) {
	s := newTestStore()
	data := validTicketData()
	delete(data, "priority")

	ticket, err := s.Create(data)
	require.NoError(t, err)
	assert.Equal(t, "medium", ticket.Priority)
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(map[string]any)
		wantErr string
	}{
		{"missing fields", func(d map[string]any) {
			delete(d, "title")
			delete(d, "requester")
		}, "Missing required fields: title, requester"},
		{"invalid category", func(d map[string]any) {
			d["category"] = "billing"
		}, "Invalid category: billing"},
		{"invalid priority", func(d map[string]any) {
			d["priority"] = "critical"
		}, "Invalid priority: critical"},
		{"short title", func(d map[string]any) {
			d["title"] = "Bug"
		}, "Title must be at least 5 characters long"},
		{"short description", func(d map[string]any) {
			d["description"] = "broken"
		}, "Description must be at least 10 characters long"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore()
			data := validTicketData()
			tc.mutate(data)

			_, err := s.Create(data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)

			var ae *agent.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, agent.KindValidationFailed, ae.Kind)
		})
	}
}

func TestGetUnknownTicket(t *testing.T) {
	s := newTestStore()

	_, err := s.Get("TIK-20250113-DEADBEEF")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ticket not found")
}

func TestUpdateTicket(t *testing.T) {
	s := newTestStore()
	ticket, err := s.Create(validTicketData())
	require.NoError(t, err)

	updated, fields, err := s.Update(ticket.ID, map[string]any{
		"status":      "in_progress",
		"assigned_to": "bob@company.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, "bob@company.com", updated.AssignedTo)
	assert.Equal(t, []string{"assigned_to", "status"}, fields)
}

func TestUpdateRejectsUnknownFields(t *testing.T) {
	s := newTestStore()
	ticket, err := s.Create(validTicketData())
	require.NoError(t, err)

	_, _, err = s.Update(ticket.ID, map[string]any{"requester": "eve@company.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid update fields: requester")
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	s := newTestStore()
	ticket, err := s.Create(validTicketData())
	require.NoError(t, err)

	_, _, err = s.Update(ticket.ID, map[string]any{"status": "done"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid status: done")
}

func TestListFilters(t *testing.T) {
	s := newTestStore()

	_, err := s.Create(validTicketData())
	require.NoError(t, err)

	second := validTicketData()
	second["category"] = "research"
	second["requester"] = "bob@company.com"
	_, err = s.Create(second)
	require.NoError(t, err)

	assert.Len(t, s.List(nil), 2)
	assert.Len(t, s.List(map[string]any{"category": "technical"}), 1)
	assert.Len(t, s.List(map[string]any{"requester": "bob@company.com"}), 1)
	assert.Len(t, s.List(map[string]any{"status": "closed"}), 0)
}

func handleEvent(t *testing.T, h *Handler, raw string) map[string]any {
	t.Helper()
	var ev agent.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	r, err := h.Handle(context.Background(), ev)
	require.NoError(t, err)

	var b map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Response.FunctionResponse.ResponseBody.Text.Body), &b))
	return b
}

func TestHandlerCreateThenStatus(t *testing.T) {
	h := NewHandler(newTestStore())

	b := handleEvent(t, h, `{
		"action": "create",
		"ticket_data": "{\"title\": \"API rate limiting issue\", \"description\": \"Quote service returning 429 errors\", \"category\": \"technical\", \"requester\": \"alice@company.com\"}"
	}`)
	require.Equal(t, true, b["success"])
	id := b["ticket_id"].(string)
	assert.Regexp(t, ticketIDPattern, id)

	// The ticket persists in the store across invocations.
	b = handleEvent(t, h, `{"action": "status", "ticket_id": "`+id+`"}`)
	require.Equal(t, true, b["success"])
	status := b["ticket_status"].(map[string]any)
	assert.Equal(t, "open", status["status"])
}

func TestHandlerStatusMissingID(t *testing.T) {
	h := NewHandler(newTestStore())

	b := handleEvent(t, h, `{"action": "status"}`)
	assert.Equal(t, false, b["success"])
	assert.Contains(t, b["error"], "ticket_id")
}

func TestHandlerUnsupportedAction(t *testing.T) {
	h := NewHandler(newTestStore())

	b := handleEvent(t, h, `{"action": "delete"}`)
	assert.Equal(t, false, b["success"])
	assert.Contains(t, b["error"], "Unsupported action: delete")
}

func TestHandlerMissingAction(t *testing.T) {
	h := NewHandler(newTestStore())

	b := handleEvent(t, h, `{}`)
	assert.Equal(t, false, b["success"])
	assert.Contains(t, b["error"], "Missing required parameter: action")
}

func TestHandlerList(t *testing.T) {
	h := NewHandler(newTestStore())

	handleEvent(t, h, `{
		"action": "create",
		"ticket_data": "{\"title\": \"Research request for tech sector\", \"description\": \"Need a sector comparison report\", \"category\": \"research\", \"requester\": \"bob@company.com\"}"
	}`)

	b := handleEvent(t, h, `{"action": "list", "filters": "{\"category\": \"research\"}"}`)
	require.Equal(t, true, b["success"])
	assert.Equal(t, float64(1), b["count"])
}
