package dto

// CreateWordlistRequest creates an empty wordlist.
type CreateWordlistRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// WordlistResponse is the public shape of a wordlist.
type WordlistResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// WordResponse is the public shape of a stored word.
type WordResponse struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
	Example    string `json:"example,omitempty"`
}

// WordInput is one reviewed candidate submitted to save_words.
type WordInput struct {
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
	Example    string `json:"example,omitempty"`
}

// SaveWordsRequest commits reviewed candidates to a wordlist.
type SaveWordsRequest struct {
	Words []WordInput `json:"words"`
}

// SaveWordsResponse reports how many rows were stored.
type SaveWordsResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// PreviewResponse returns parsed or extracted candidates for review.
type PreviewResponse struct {
	Words []WordInput `json:"words"`
}
