package controller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo-client/internal/model"
	"github.com/idilsaglam/todo-client/internal/todoapi"
	"github.com/idilsaglam/todo-client/internal/todoapi/todoapitest"
)

func setup(t *testing.T, seed ...model.Item) (*Controller, *todoapitest.Server) {
	t.Helper()
	srv := todoapitest.New(t, seed...)
	client, err := todoapi.New(srv.URL, todoapi.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return New(client), srv
}

func loaded(t *testing.T, seed ...model.Item) (*Controller, *todoapitest.Server) {
	t.Helper()
	c, srv := setup(t, seed...)
	require.Equal(t, Applied, c.Load(context.Background()))
	return c, srv
}

func TestLoadEmpty(t *testing.T) {
	c, _ := setup(t)

	assert.Equal(t, Applied, c.Load(context.Background()))
	st := c.State()
	assert.Equal(t, []model.Item{}, st.Items)
	assert.Empty(t, st.LastError)
	assert.False(t, st.Pending)
}

func TestLoadFailureKeepsItems(t *testing.T) {
	c, srv := loaded(t, items("1", "2")...)
	srv.Fail("list", todoapitest.Failure{Status: http.StatusServiceUnavailable, Message: "maintenance"})

	assert.Equal(t, Failed, c.Load(context.Background()))
	st := c.State()
	assert.Equal(t, items("1", "2"), st.Items)
	assert.Equal(t, "maintenance", st.LastError)
	assert.False(t, st.Pending)
}

func TestCreateBlankSendsNothing(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	before := srv.TotalCalls()

	assert.Equal(t, Skipped, c.Create(context.Background(), ""))
	assert.Equal(t, Skipped, c.Create(context.Background(), "   "))

	assert.Equal(t, before, srv.TotalCalls())
	assert.Equal(t, items("1"), c.State().Items)
	assert.Empty(t, c.State().LastError)
}

func TestCreateAppendsServerCopy(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	srv.NextID = func() string { return "new" }
	c.SetDraft("buy milk")

	assert.Equal(t, Applied, c.Create(context.Background(), "buy milk"))

	st := c.State()
	require.Len(t, st.Items, 2)
	assert.Equal(t, model.Item{ID: "new", Text: "buy milk", Completed: false}, st.Items[1])
	assert.Empty(t, st.Draft)
}

func TestCreateFailureThenLoadClearsError(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	c.SetDraft("buy milk")
	srv.Fail("create", todoapitest.Failure{Status: http.StatusInternalServerError})

	assert.Equal(t, Failed, c.Create(context.Background(), "buy milk"))
	st := c.State()
	assert.Equal(t, items("1"), st.Items)
	assert.NotEmpty(t, st.LastError)
	assert.Equal(t, "buy milk", st.Draft, "draft survives a failed create")

	assert.Equal(t, Applied, c.Load(context.Background()))
	assert.Empty(t, c.State().LastError)
}

func TestToggleUnknownIDSendsNothing(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	before := srv.TotalCalls()

	assert.Equal(t, Skipped, c.Toggle(context.Background(), "nope"))
	assert.Equal(t, before, srv.TotalCalls())
}

func TestToggleFlipsOnlyTarget(t *testing.T) {
	c, srv := loaded(t, items("1", "2", "3")...)

	assert.Equal(t, Applied, c.Toggle(context.Background(), "2"))

	st := c.State()
	assert.Equal(t, []model.ID{"1", "2", "3"}, ids(st.Items))
	assert.True(t, st.Items[1].Completed)
	assert.False(t, st.Items[0].Completed)
	assert.False(t, st.Items[2].Completed)

	// full update: text and completed both sent
	assert.Equal(t, []map[string]any{{"text": "item 2", "completed": true}}, srv.Bodies("update"))

	assert.Equal(t, Applied, c.Toggle(context.Background(), "2"))
	assert.False(t, c.State().Items[1].Completed)
}

func TestToggleFailureLeavesItem(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	srv.Fail("update", todoapitest.Failure{Status: http.StatusConflict, Message: "stale"})

	assert.Equal(t, Failed, c.Toggle(context.Background(), "1"))
	st := c.State()
	assert.False(t, st.Items[0].Completed)
	assert.Equal(t, "stale", st.LastError)
}

func TestRemoveKeepsOthersInOrder(t *testing.T) {
	c, _ := loaded(t, items("1", "2", "3")...)

	assert.Equal(t, Applied, c.Remove(context.Background(), "2"))
	assert.Equal(t, items("1", "3"), c.State().Items)
}

func TestRemoveFailureKeepsItem(t *testing.T) {
	c, _ := loaded(t, items("1")...)

	// the fake server answers 404 for unknown ids
	assert.Equal(t, Failed, c.Remove(context.Background(), "ghost"))
	assert.Equal(t, items("1"), c.State().Items)
	assert.Equal(t, "todo not found", c.State().LastError)
}

func TestUpdateSkips(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	before := srv.TotalCalls()

	assert.Equal(t, Skipped, c.Update(context.Background(), "1", "item 1"))
	assert.Equal(t, Skipped, c.Update(context.Background(), "1", ""))
	assert.Equal(t, Skipped, c.Update(context.Background(), "missing", "x"))
	assert.Equal(t, before, srv.TotalCalls())
}

func TestUpdateSendsPartial(t *testing.T) {
	c, srv := loaded(t, model.Item{ID: "1", Text: "old", Completed: true})

	assert.Equal(t, Applied, c.Update(context.Background(), "1", "new"))
	assert.Equal(t, model.Item{ID: "1", Text: "new", Completed: true}, c.State().Items[0])
	assert.Equal(t, []map[string]any{{"text": "new"}}, srv.Bodies("update"))
}

func TestNetworkFailureIsRecoverable(t *testing.T) {
	c, srv := loaded(t, items("1")...)
	srv.Close()

	assert.Equal(t, Failed, c.Toggle(context.Background(), "1"))
	st := c.State()
	assert.Contains(t, st.LastError, "Could not reach the server")
	assert.False(t, st.Pending)
	assert.Equal(t, items("1"), st.Items)
}

func TestStateIsACopy(t *testing.T) {
	c, _ := loaded(t, items("1")...)
	st := c.State()
	st.Items[0].Text = "mutated"
	assert.Equal(t, "item 1", c.State().Items[0].Text)
}

// gatedService holds every Update until the test releases it.
type gatedService struct {
	mu      sync.Mutex
	items   []model.Item
	release map[string]chan model.Item
	started chan string

	deleteErr error
}

func newGated(seed ...model.Item) *gatedService {
	return &gatedService{items: seed, release: map[string]chan model.Item{}, started: make(chan string, 8)}
}

func (g *gatedService) List(context.Context) ([]model.Item, error) { return g.items, nil }

func (g *gatedService) Create(_ context.Context, text string) (model.Item, error) {
	return model.Item{ID: "c", Text: text}, nil
}

func (g *gatedService) Update(_ context.Context, id model.ID, f model.Fields) (model.Item, error) {
	key := string(id) + ":" + *f.Text
	ch := make(chan model.Item)
	g.mu.Lock()
	g.release[key] = ch
	g.mu.Unlock()
	g.started <- key
	return <-ch, nil
}

func (g *gatedService) Delete(context.Context, model.ID) error { return g.deleteErr }

func (g *gatedService) answer(key string, it model.Item) {
	g.mu.Lock()
	ch := g.release[key]
	g.mu.Unlock()
	ch <- it
}

func TestConcurrentUpdatesLastResponseWins(t *testing.T) {
	svc := newGated(items("1", "2")...)
	c := New(svc)
	require.Equal(t, Applied, c.Load(context.Background()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.Update(context.Background(), "1", "first") }()
	<-svc.started
	go func() { defer wg.Done(); c.Update(context.Background(), "1", "second") }()
	<-svc.started

	assert.True(t, c.State().Pending)

	// responses arrive out of order
	svc.answer("1:second", model.Item{ID: "1", Text: "second"})
	require.Eventually(t, func() bool { return c.State().Items[0].Text == "second" }, time.Second, time.Millisecond)
	assert.True(t, c.State().Pending, "first update still in flight")

	svc.answer("1:first", model.Item{ID: "1", Text: "first"})
	wg.Wait()

	st := c.State()
	assert.False(t, st.Pending)
	assert.Equal(t, "first", st.Items[0].Text)
	assert.Equal(t, "item 2", st.Items[1].Text)
}

func TestUpdateAfterConcurrentRemoveStaysRemoved(t *testing.T) {
	svc := newGated(items("1", "2")...)
	c := New(svc)
	require.Equal(t, Applied, c.Load(context.Background()))

	done := make(chan Outcome)
	go func() { done <- c.Update(context.Background(), "1", "late") }()
	<-svc.started

	require.Equal(t, Applied, c.Remove(context.Background(), "1"))
	svc.answer("1:late", model.Item{ID: "1", Text: "late"})
	assert.Equal(t, Applied, <-done)

	assert.Equal(t, []model.ID{"2"}, ids(c.State().Items))
}

func TestNextRequestClearsErrorWhileInFlight(t *testing.T) {
	svc := newGated(items("1", "2")...)
	svc.deleteErr = errors.New("boom")
	c := New(svc)
	require.Equal(t, Applied, c.Load(context.Background()))

	require.Equal(t, Failed, c.Remove(context.Background(), "2"))
	require.NotEmpty(t, c.State().LastError)

	done := make(chan Outcome)
	go func() { done <- c.Update(context.Background(), "1", "again") }()
	<-svc.started

	st := c.State()
	assert.Empty(t, st.LastError)
	assert.True(t, st.Pending)

	svc.answer("1:again", model.Item{ID: "1", Text: "again"})
	assert.Equal(t, Applied, <-done)
	assert.False(t, c.State().Pending)
	assert.Equal(t, []model.ID{"1", "2"}, ids(c.State().Items))
}
