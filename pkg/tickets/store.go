// Package tickets implements the support ticket capability with an in-memory
// store scoped to one execution environment. Tickets survive warm
// invocations and vanish with the environment; there is no database behind
// this deployment.
package tickets

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

type Ticket struct {
	ID          string    `json:"ticket_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Requester   string    `json:"requester"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	AssignedTo  string    `json:"assigned_to,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	requiredFields  = []string{"title", "description", "category", "requester"}
	validCategories = []string{"technical", "research", "client_service", "platform", "data", "general"}
	validPriorities = []string{"low", "medium", "high", "urgent"}
	validStatuses   = []string{"open", "in_progress", "resolved", "closed"}

	allowedUpdateFields = []string{"status", "priority", "assigned_to", "description", "tags"}
)

// Store keeps tickets in creation order. Like the caches in this repository
// it assumes one invocation at a time per environment, so there is no lock.
type Store struct {
	tickets map[string]*Ticket
	order   []string
	log     *slog.Logger
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		tickets: map[string]*Ticket{},
		log:     logging.New("TicketStore"),
		now:     time.Now,
	}
}

// Create validates and stores a new ticket, returning its generated ID.
func (s *Store) Create(data map[string]any) (*Ticket, error) {
	if err := validateCreate(data); err != nil {
		return nil, err
	}

	now := s.now()
	t := &Ticket{
		ID:          s.newID(now),
		Title:       str(data, "title"),
		Description: str(data, "description"),
		Category:    strings.ToLower(str(data, "category")),
		Requester:   str(data, "requester"),
		Priority:    strings.ToLower(strOr(data, "priority", "medium")),
		Status:      "open",
		AssignedTo:  str(data, "assigned_to"),
		Tags:        tags(data["tags"]),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tickets[t.ID] = t
	s.order = append(s.order, t.ID)

	s.log.Info("ticket created", "ticket_id", t.ID, "category", t.Category, "priority", t.Priority)
	return t, nil
}

// Get returns a stored ticket or a validation failure for unknown IDs.
func (s *Store) Get(id string) (*Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, agent.ValidationFailed("Ticket not found: " + id)
	}
	return t, nil
}

// Update applies a restricted field set to an existing ticket.
func (s *Store) Update(id string, updates map[string]any) (*Ticket, []string, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	var invalid []string
	for field := range updates {
		if !contains(allowedUpdateFields, field) {
			invalid = append(invalid, field)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, nil, agent.ValidationFailed("Invalid update fields: " + strings.Join(invalid, ", "))
	}

	if v, ok := updates["status"]; ok {
		status := strings.ToLower(asString(v))
		if !contains(validStatuses, status) {
			return nil, nil, agent.ValidationFailed(fmt.Sprintf(
				"Invalid status: %s. Valid statuses: %s", asString(v), strings.Join(validStatuses, ", ")))
		}
		t.Status = status
	}
	if v, ok := updates["priority"]; ok {
		priority := strings.ToLower(asString(v))
		if !contains(validPriorities, priority) {
			return nil, nil, agent.ValidationFailed(fmt.Sprintf(
				"Invalid priority: %s. Valid priorities: %s", asString(v), strings.Join(validPriorities, ", ")))
		}
		t.Priority = priority
	}
	if v, ok := updates["assigned_to"]; ok {
		t.AssignedTo = asString(v)
	}
	if v, ok := updates["description"]; ok {
		t.Description = asString(v)
	}
	if v, ok := updates["tags"]; ok {
		t.Tags = tags(v)
	}
	t.UpdatedAt = s.now()

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	s.log.Info("ticket updated", "ticket_id", id, "fields", strings.Join(fields, ","))
	return t, fields, nil
}

// List returns tickets in creation order, optionally filtered by category,
// status, or requester.
func (s *Store) List(filters map[string]any) []*Ticket {
	category := strings.ToLower(str(filters, "category"))
	status := strings.ToLower(str(filters, "status"))
	requester := str(filters, "requester")

	out := make([]*Ticket, 0, len(s.order))
	for _, id := range s.order {
		t := s.tickets[id]
		if category != "" && t.Category != category {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if requester != "" && t.Requester != requester {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Store) newID(now time.Time) string {
	unique := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("TIK-%s-%s", now.Format("20060102"), unique)
}

func validateCreate(data map[string]any) error {
	var missing []string
	for _, field := range requiredFields {
		if str(data, field) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return agent.ValidationFailed("Missing required fields: " + strings.Join(missing, ", "))
	}

	category := strings.ToLower(str(data, "category"))
	if !contains(validCategories, category) {
		return agent.ValidationFailed(fmt.Sprintf(
			"Invalid category: %s. Valid categories: %s", str(data, "category"), strings.Join(validCategories, ", ")))
	}
	if priority := strings.ToLower(str(data, "priority")); priority != "" && !contains(validPriorities, priority) {
		return agent.ValidationFailed(fmt.Sprintf(
			"Invalid priority: %s. Valid priorities: %s", str(data, "priority"), strings.Join(validPriorities, ", ")))
	}
	if len(str(data, "title")) < 5 {
		return agent.ValidationFailed("Title must be at least 5 characters long")
	}
	if len(str(data, "description")) < 10 {
		return agent.ValidationFailed("Description must be at least 10 characters long")
	}
	return nil
}

// tags accepts a comma-separated string or an array.
func tags(v any) []string {
	var elems []string
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		for _, item := range t {
			elems = append(elems, asString(item))
		}
	case []string:
		elems = t
	case string:
		elems = strings.Split(t, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		return strings.TrimSpace(asString(v))
	}
	return ""
}

func strOr(m map[string]any, key, def string) string {
	if v := str(m, key); v != "" {
		return v
	}
	return def
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
