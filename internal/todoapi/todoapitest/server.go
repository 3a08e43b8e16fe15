// Package todoapitest runs an in-memory todo service for tests.
package todoapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idilsaglam/todo-client/internal/model"
)

// Failure makes the next matching request fail with Status and Message.
type Failure struct {
	Status  int
	Message string
}

// Server is a fake todo service backed by a slice.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	items    []model.Item
	calls    map[string]int
	failures map[string]Failure
	bodies   map[string][]map[string]any
	// NextID, when set, produces ids instead of random uuids.
	NextID func() string
}

// New starts a server seeded with items and closes it when t finishes.
func New(t testing.TB, items ...model.Item) *Server {
	t.Helper()
	s := &Server{
		items:    append([]model.Item(nil), items...),
		calls:    map[string]int{},
		failures: map[string]Failure{},
		bodies:   map[string][]map[string]any{},
	}

	r := mux.NewRouter()
	r.HandleFunc("/todos", s.list).Methods(http.MethodGet)
	r.HandleFunc("/todos", s.create).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}", s.update).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id}", s.remove).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Fail arranges for the next request of the given op ("list", "create",
// "update", "delete") to fail once.
func (s *Server) Fail(op string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = f
}

// Calls returns how many requests of op reached the server.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of requests of any kind.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Bodies returns the decoded request bodies received for op.
func (s *Server) Bodies(op string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies[op]...)
}

// Items returns a copy of the server-side list.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// begin records the call and reports whether an injected failure was written.
func (s *Server) begin(op string, w http.ResponseWriter) bool {
	s.calls[op]++
	f, ok := s.failures[op]
	if !ok {
		return false
	}
	delete(s.failures, op)
	writeJSON(w, f.Status, map[string]string{"message": f.Message})
	return true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.begin("list", w) {
		return
	}
	writeJSON(w, http.StatusOK, append([]model.Item{}, s.items...))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.begin("create", w) {
		return
	}
	body, ok := s.decode("create", w, r)
	if !ok {
		return
	}
	text, _ := body["text"].(string)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "text is required"})
		return
	}
	done, _ := body["completed"].(bool)
	it := model.Item{ID: model.ID(s.newID()), Text: text, Completed: done}
	s.items = append(s.items, it)
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.begin("update", w) {
		return
	}
	body, ok := s.decode("update", w, r)
	if !ok {
		return
	}
	i := s.index(model.ID(mux.Vars(r)["id"]))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "todo not found"})
		return
	}
	if text, ok := body["text"].(string); ok {
		s.items[i].Text = text
	}
	if done, ok := body["completed"].(bool); ok {
		s.items[i].Completed = done
	}
	writeJSON(w, http.StatusOK, s.items[i])
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.begin("delete", w) {
		return
	}
	i := s.index(model.ID(mux.Vars(r)["id"]))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "todo not found"})
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(op string, w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return nil, false
	}
	s.bodies[op] = append(s.bodies[op], body)
	return body, true
}

func (s *Server) index(id model.ID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) newID() string {
	if s.NextID != nil {
		return s.NextID()
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
