// Package controller keeps a local todo list in step with the remote
// service. Every mutation waits for the server's answer; nothing is applied
// optimistically and nothing is retried.
package controller

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/idilsaglam/todo-client/internal/model"
	"github.com/idilsaglam/todo-client/internal/todoapi"
)

// Service is the remote todo API. *todoapi.Client implements it.
type Service interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, text string) (model.Item, error)
	Update(ctx context.Context, id model.ID, f model.Fields) (model.Item, error)
	Delete(ctx context.Context, id model.ID) error
}

// Outcome tells the caller what an operation ended up doing.
type Outcome int

const (
	// Skipped means the input was rejected locally and no request was sent.
	Skipped Outcome = iota
	// Applied means the server accepted the request and the state reflects it.
	Applied
	// Failed means the request failed; State().LastError says why.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Controller owns the ViewState. It is safe for concurrent use: several
// operations may be in flight, and their results are merged by item id.
type Controller struct {
	svc    Service
	logger *slog.Logger

	mu    sync.Mutex
	state ViewState
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New returns a controller with an empty list.
func New(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:    svc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:  ViewState{Items: []model.Item{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Find looks up an item in the current state.
func (c *Controller) Find(id model.ID) (model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Find(id)
}

// SetDraft records the text currently typed into the input field.
func (c *Controller) SetDraft(text string) {
	c.dispatch(DraftChanged{Text: text})
}

// Load replaces the list with the server's.
func (c *Controller) Load(ctx context.Context) Outcome {
	return c.run("load", "", func() (Event, error) {
		items, err := c.svc.List(ctx)
		if err != nil {
			return nil, err
		}
		return Loaded{Items: items}, nil
	})
}

// Create adds a new item with the trimmed text. Blank text is ignored.
func (c *Controller) Create(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Skipped
	}
	return c.run("create", "", func() (Event, error) {
		it, err := c.svc.Create(ctx, text)
		if err != nil {
			return nil, err
		}
		return Created{Item: it}, nil
	})
}

// Toggle flips the completion flag of id by sending a full update.
// Unknown ids are ignored.
func (c *Controller) Toggle(ctx context.Context, id model.ID) Outcome {
	it, ok := c.Find(id)
	if !ok {
		return Skipped
	}
	it.Completed = !it.Completed
	return c.run("toggle", id, func() (Event, error) {
		updated, err := c.svc.Update(ctx, id, model.Full(it))
		if err != nil {
			return nil, err
		}
		return Replaced{Item: updated}, nil
	})
}

// Update changes the text of id. Empty or unchanged text is ignored, as are
// unknown ids.
func (c *Controller) Update(ctx context.Context, id model.ID, text string) Outcome {
	it, ok := c.Find(id)
	if !ok || model.Blank(text) || text == it.Text {
		return Skipped
	}
	return c.run("update", id, func() (Event, error) {
		updated, err := c.svc.Update(ctx, id, model.TextOnly(text))
		if err != nil {
			return nil, err
		}
		return Replaced{Item: updated}, nil
	})
}

// Remove deletes id on the server and then locally.
func (c *Controller) Remove(ctx context.Context, id model.ID) Outcome {
	return c.run("remove", id, func() (Event, error) {
		if err := c.svc.Delete(ctx, id); err != nil {
			return nil, err
		}
		return Removed{ID: id}, nil
	})
}

// run brackets one request with Started/Finished and folds its result into
// the state. The lock is not held while the request is in flight.
func (c *Controller) run(op string, id model.ID, call func() (Event, error)) Outcome {
	c.dispatch(Started{})
	defer c.dispatch(Finished{})

	ev, err := call()
	if err != nil {
		c.logger.Warn("todo request failed", "op", op, "id", id, "err", err)
		msg := todoapi.Message(err)
		if msg == "" {
			msg = op + " failed"
		}
		c.dispatch(Errored{Message: msg})
		return Failed
	}
	c.logger.Debug("todo request applied", "op", op, "id", id)
	c.dispatch(ev)
	return Applied
}

func (c *Controller) dispatch(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, e)
}
