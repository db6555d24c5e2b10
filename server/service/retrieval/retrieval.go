// Package retrieval defines the ranked manual-snippet service consumed by
// the dialogue engine, and the safety gate that decides whether retrieved
// snippets justify a specification explanation.
package retrieval

import (
	"context"
	"sort"
)

// ContentType is the coarse category of a manual snippet.
type ContentType string

const (
	ContentTypeGeneral         ContentType = "general"
	ContentTypeProcedure       ContentType = "procedure"
	ContentTypeSpecification   ContentType = "specification"
	ContentTypeWarning         ContentType = "warning"
	ContentTypeTroubleshooting ContentType = "troubleshooting"
)

// Snippet is a ranked manual excerpt. Score is in [0,1].
type Snippet struct {
	Content     string      `json:"content"`
	Page        int         `json:"page"`
	Section     string      `json:"section"`
	ContentType ContentType `json:"content_type"`
	HasWarning  bool        `json:"has_warning"`
	Score       float64     `json:"score"`
}

// Service is the external ranked-snippet search capability.
type Service interface {
	// Search returns up to n snippets ranked by relevance to the query,
	// restricted to the given vehicle when vehicleID is non-empty.
	Search(ctx context.Context, query string, vehicleID string, n int) ([]Snippet, error)

	// SearchWarnings is Search restricted to warning-flagged snippets.
	SearchWarnings(ctx context.Context, query string, vehicleID string, n int) ([]Snippet, error)
}

// SortSnippets orders snippets deterministically: score descending, then
// page ascending, then section. Concurrently fetched result sets merge
// through this so the outcome is independent of arrival order.
func SortSnippets(snippets []Snippet) {
	sort.SliceStable(snippets, func(i, j int) bool {
		if snippets[i].Score != snippets[j].Score {
			return snippets[i].Score > snippets[j].Score
		}
		if snippets[i].Page != snippets[j].Page {
			return snippets[i].Page < snippets[j].Page
		}
		return snippets[i].Section < snippets[j].Section
	})
}
