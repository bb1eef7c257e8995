package domain

import (
	"strings"
	"time"
)

// Wordlist is a named collection of words owned by one user.
type Wordlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the wordlist.
func (w *Wordlist) Validate() error {
	if w.OwnerID == "" {
		return NewValidationError("owner is required")
	}
	if strings.TrimSpace(w.Name) == "" {
		return NewValidationError("name is required")
	}
	return nil
}

// Word is a single term/definition/example entry in a wordlist.
type Word struct {
	ID         string
	WordlistID string
	Term       string
	Definition string
	Example    string
	CreatedAt  time.Time
}

// Validate validates the word.
func (w *Word) Validate() error {
	if strings.TrimSpace(w.Term) == "" {
		return NewValidationError("term is required")
	}
	return nil
}

// WordCandidate is an unsaved term/definition/example triple produced by
// file parsing or image extraction, pending user review.
type WordCandidate struct {
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
	Example    string `json:"example,omitempty"`
}
