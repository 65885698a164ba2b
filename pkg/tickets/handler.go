package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfoliobot/pkg/agent"
	"portfoliobot/pkg/logging"
)

const (
	defaultActionGroup = "TicketManagementActionGroup"
	defaultFunction    = "manageTickets"
)

var supportedActions = []string{"create", "status", "update", "list"}

// Handler routes ticket actions against one store. The store lives as long
// as the execution environment, so a ticket created on one warm invocation
// is visible to the next.
type Handler struct {
	store *Store
	env   *agent.Envelope
	spec  agent.Spec
	log   *slog.Logger
}

func NewHandler(store *Store) *Handler {
	return &Handler{
		store: store,
		env:   agent.NewEnvelope(defaultActionGroup, defaultFunction),
		spec: agent.Spec{Fields: []agent.Field{
			{Name: "action", Kind: agent.Enum, Required: true},
			{Name: "ticket_data", Kind: agent.JSON},
			{Name: "ticket_id", Kind: agent.String},
			{Name: "update_data", Kind: agent.JSON},
			{Name: "filters", Kind: agent.JSON},
		}},
		log: logging.New("TicketHandler"),
	}
}

func (h *Handler) Handle(ctx context.Context, ev agent.Event) (resp agent.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("handler panicked", "panic", fmt.Sprintf("%v", r))
			resp = h.env.Failure(ev, agent.Internal(fmt.Errorf("%v", r)))
			err = nil
		}
	}()

	args, exErr := h.spec.Extract(ev)
	if exErr != nil {
		h.log.Warn("parameter extraction failed", logging.Err(exErr))
		return h.env.Failure(ev, exErr), nil
	}

	action := args.String("action")
	h.log.Info("processing request", "action", action, "requestId", ev.RequestID)

	var (
		payload map[string]any
		opErr   error
	)
	switch action {
	case "create":
		payload, opErr = h.create(args)
	case "status":
		payload, opErr = h.status(args)
	case "update":
		payload, opErr = h.update(args)
	case "list":
		payload = h.list(args)
	default:
		opErr = agent.UnsupportedEnum("action", action, supportedActions)
	}
	if opErr != nil {
		h.log.Warn("ticket action failed", "action", action, logging.Err(opErr))
		return h.env.Failure(ev, agent.Classify(opErr)), nil
	}
	return h.env.Success(ev, payload), nil
}

func (h *Handler) create(args agent.Args) (map[string]any, error) {
	t, err := h.store.Create(args.Map("ticket_data"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"ticket_id":   t.ID,
		"title":       t.Title,
		"description": t.Description,
		"category":    t.Category,
		"status":      t.Status,
		"created_at":  t.CreatedAt.UTC().Format(time.RFC3339),
		"message":     "Ticket created successfully",
	}, nil
}

func (h *Handler) status(args agent.Args) (map[string]any, error) {
	id := args.String("ticket_id")
	if id == "" {
		return nil, agent.MissingParameter("ticket_id")
	}
	t, err := h.store.Get(id)
	if err != nil {
		return nil, err
	}
	return map[string]any{"ticket_status": t}, nil
}

func (h *Handler) update(args agent.Args) (map[string]any, error) {
	id := args.String("ticket_id")
	if id == "" {
		return nil, agent.MissingParameter("ticket_id")
	}
	updates := args.Map("update_data")
	if len(updates) == 0 {
		return nil, agent.MissingParameter("update_data")
	}

	t, fields, err := h.store.Update(id, updates)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"ticket_update": map[string]any{
			"ticket_id":      t.ID,
			"updated_fields": fields,
			"updated_at":     t.UpdatedAt.UTC().Format(time.RFC3339),
			"message":        "Ticket updated successfully",
		},
	}, nil
}

func (h *Handler) list(args agent.Args) map[string]any {
	listed := h.store.List(args.Map("filters"))
	return map[string]any{
		"tickets": listed,
		"count":   len(listed),
	}
}
