// Package search implements the global lookup used by the header search
// box. Matching is plain case-insensitive substring containment over a
// fixed field set per collection; there is no ranking or fuzziness, and
// results keep collection order (users, teams, objectives, resources).
package search

import "strings"

// MinTermLength is the shortest term the endpoint will search for.
// Shorter terms return an empty result set without touching storage.
const MinTermLength = 3

// DefaultLimit is how many results the header dropdown shows. The full
// total is always reported so the client can offer a "see all" link.
const DefaultLimit = 7

const (
	ResultUser      = "user"
	ResultTeam      = "team"
	ResultObjective = "objective"
	ResultResource  = "resource"
)

type Result struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}

type Results struct {
	Items []Result `json:"items"`
	Total int      `json:"total"`
}

// Candidate is one searchable record with the fields its collection
// exposes to matching. Title and Description carry into the result.
type Candidate struct {
	ID          string
	Title       string
	Description string
	Fields      []string
}

func matches(term string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Match filters each collection against term, concatenates matches in
// collection order, and truncates to limit. Total counts all matches
// before truncation. A term shorter than MinTermLength matches nothing.
func Match(term string, collections map[string][]Candidate, order []string, limit int) Results {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinTermLength {
		return Results{Items: []Result{}}
	}
	lowered := strings.ToLower(term)

	out := Results{Items: []Result{}}
	for _, collection := range order {
		for _, c := range collections[collection] {
			if !matches(lowered, c.Fields) {
				continue
			}
			out.Total++
			if limit <= 0 || len(out.Items) < limit {
				out.Items = append(out.Items, Result{
					ID:          c.ID,
					Title:       c.Title,
					Description: c.Description,
					Type:        collection,
					URL:         resultURL(collection, c.ID),
				})
			}
		}
	}
	return out
}

func resultURL(collection, id string) string {
	switch collection {
	case ResultUser:
		return "/users/" + id
	case ResultTeam:
		return "/teams/" + id
	case ResultObjective:
		return "/objectives/" + id
	case ResultResource:
		return "/resources/" + id
	default:
		return ""
	}
}
