// Package parser turns uploaded CSV/JSON wordlist files into word
// candidates. Headers are matched case-insensitively and unknown columns
// are ignored; rows without a term are dropped.
package parser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
)

// SniffAndParse picks the parser from the filename extension. Anything
// that is not .json is treated as CSV.
func SniffAndParse(data []byte, filename string) ([]domain.WordCandidate, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".json") {
		return ParseJSON(data)
	}
	return ParseCSV(data)
}

type jsonWord struct {
	Term       string `json:"term"`
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Meaning    string `json:"meaning"`
	Example    string `json:"example"`
	Sentence   string `json:"sentence"`
}

// ParseJSON parses a JSON array of {term, definition?, example?} objects.
// The alternate keys word/meaning/sentence are accepted as well.
func ParseJSON(data []byte) ([]domain.WordCandidate, error) {
	var items []jsonWord
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, domain.NewParseError("invalid JSON wordlist", err)
	}

	out := make([]domain.WordCandidate, 0, len(items))
	for _, it := range items {
		term := strings.TrimSpace(firstNonEmpty(it.Term, it.Word))
		if term == "" {
			continue
		}
		out = append(out, domain.WordCandidate{
			Term:       term,
			Definition: strings.TrimSpace(firstNonEmpty(it.Definition, it.Meaning)),
			Example:    strings.TrimSpace(firstNonEmpty(it.Example, it.Sentence)),
		})
	}
	return out, nil
}

// ParseCSV parses a headered CSV with term,definition,example columns
// (word/meaning/sentence accepted as aliases, extra columns ignored).
func ParseCSV(data []byte) ([]domain.WordCandidate, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.NewParseError("invalid CSV wordlist", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := map[string]int{}
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	termCol, ok := columnIndex(header, "term", "word")
	if !ok {
		return nil, domain.NewParseError("CSV is missing a term column", nil)
	}
	defCol, _ := columnIndex(header, "definition", "meaning")
	exCol, _ := columnIndex(header, "example", "sentence")

	out := make([]domain.WordCandidate, 0, len(records)-1)
	for _, rec := range records[1:] {
		term := strings.TrimSpace(field(rec, termCol))
		if term == "" {
			continue
		}
		out = append(out, domain.WordCandidate{
			Term:       term,
			Definition: strings.TrimSpace(field(rec, defCol)),
			Example:    strings.TrimSpace(field(rec, exCol)),
		})
	}
	return out, nil
}

// WriteCSV renders words in the canonical term,definition,example column
// order so exported lists round-trip through SniffAndParse.
func WriteCSV(words []domain.Word) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"term", "definition", "example"}); err != nil {
		return nil, err
	}
	for _, word := range words {
		if err := w.Write([]string{word.Term, word.Definition, word.Example}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func columnIndex(header map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := header[name]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
