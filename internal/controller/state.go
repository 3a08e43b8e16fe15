package controller

import (
	"slices"

	"github.com/idilsaglam/todo-client/internal/model"
)

// ViewState is a snapshot of everything the front end renders. Values are
// never mutated in place; Reduce returns a new one.
type ViewState struct {
	Items     []model.Item
	Draft     string
	Pending   bool
	LastError string

	inflight int
}

// Find returns the item with id.
func (s ViewState) Find(id model.ID) (model.Item, bool) {
	if i := s.index(id); i >= 0 {
		return s.Items[i], true
	}
	return model.Item{}, false
}

func (s ViewState) index(id model.ID) int {
	return slices.IndexFunc(s.Items, func(it model.Item) bool { return it.ID == id })
}

func (s ViewState) clone() ViewState {
	s.Items = slices.Clone(s.Items)
	return s
}

// Event is an input to Reduce.
type Event interface{ event() }

type (
	// Started marks a request about to be issued.
	Started struct{}
	// Finished marks a request that completed, successfully or not.
	Finished struct{}
	// Loaded replaces the whole list.
	Loaded struct{ Items []model.Item }
	// Created appends the server's copy of a new item.
	Created struct{ Item model.Item }
	// Replaced swaps in the server's copy of an existing item.
	Replaced struct{ Item model.Item }
	// Removed drops the item with ID.
	Removed struct{ ID model.ID }
	// Errored records a user-visible error.
	Errored struct{ Message string }
	// DraftChanged sets the uncommitted input text.
	DraftChanged struct{ Text string }
)

func (Started) event()      {}
func (Finished) event()     {}
func (Loaded) event()       {}
func (Created) event()      {}
func (Replaced) event()     {}
func (Removed) event()      {}
func (Errored) event()      {}
func (DraftChanged) event() {}

// Reduce applies e to s and returns the resulting state. s is left untouched.
func Reduce(s ViewState, e Event) ViewState {
	next := s.clone()
	switch e := e.(type) {
	case Started:
		next.inflight++
		next.Pending = true
		next.LastError = ""
	case Finished:
		if next.inflight > 0 {
			next.inflight--
		}
		next.Pending = next.inflight > 0
	case Loaded:
		next.Items = slices.Clone(e.Items)
		if next.Items == nil {
			next.Items = []model.Item{}
		}
	case Created:
		next.Items = append(next.Items, e.Item)
		next.Draft = ""
	case Replaced:
		// an item deleted while this response was in flight stays deleted
		if i := next.index(e.Item.ID); i >= 0 {
			next.Items[i] = e.Item
		}
	case Removed:
		next.Items = slices.DeleteFunc(next.Items, func(it model.Item) bool { return it.ID == e.ID })
	case Errored:
		next.LastError = e.Message
	case DraftChanged:
		next.Draft = e.Text
	}
	return next
}
