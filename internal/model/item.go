package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is the server-assigned identifier of a todo. The client never makes
// one up; it only echoes back what the server returned.
type ID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: want string or number, got %s", b)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Item is the domain model for a todo entry.
type Item struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON also understands the older "isComplete" field some
// servers still emit.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         ID     `json:"id"`
		Text       string `json:"text"`
		Completed  *bool  `json:"completed"`
		IsComplete *bool  `json:"isComplete"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*it = Item{ID: raw.ID, Text: raw.Text}
	switch {
	case raw.Completed != nil:
		it.Completed = *raw.Completed
	case raw.IsComplete != nil:
		it.Completed = *raw.IsComplete
	}
	return nil
}

// Fields is a (possibly partial) update payload. Nil fields are left out
// of the request body.
type Fields struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Full returns the fields for a full update of it.
func Full(it Item) Fields {
	text, done := it.Text, it.Completed
	return Fields{Text: &text, Completed: &done}
}

// TextOnly returns a partial update carrying only text.
func TextOnly(text string) Fields {
	return Fields{Text: &text}
}

// Count splits items into completed and open totals.
func Count(items []Item) (done, open int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			open++
		}
	}
	return done, open
}

// Blank reports whether s has no visible text.
func Blank(s string) bool { return strings.TrimSpace(s) == "" }
