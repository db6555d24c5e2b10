package retrieval

import (
	"context"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/hrygo/autosense/store"
)

// localService serves ranked snippets from the local manual-chunk store.
// Ranking is a plain token-overlap score: the corpus is manual-sized, so
// a linear scan is acceptable, and similarity ranking proper is delegated
// to external indexing when configured.
type localService struct {
	store *store.Store
}

// NewLocalService creates a store-backed retrieval service.
func NewLocalService(st *store.Store) Service {
	return &localService{store: st}
}

func (s *localService) Search(ctx context.Context, query string, vehicleID string, n int) ([]Snippet, error) {
	return s.search(ctx, query, vehicleID, n, false)
}

func (s *localService) SearchWarnings(ctx context.Context, query string, vehicleID string, n int) ([]Snippet, error) {
	return s.search(ctx, query, vehicleID, n, true)
}

func (s *localService) search(ctx context.Context, query string, vehicleID string, n int, warningOnly bool) ([]Snippet, error) {
	find := &store.FindManualChunk{WarningOnly: warningOnly}
	if vehicleID != "" {
		find.VehicleID = &vehicleID
	}
	chunks, err := s.store.ListManualChunks(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load manual chunks")
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var snippets []Snippet
	for _, c := range chunks {
		score := overlapScore(tokens, c.Content)
		if score <= 0 {
			continue
		}
		snippets = append(snippets, Snippet{
			Content:     c.Content,
			Page:        c.Page,
			Section:     c.Section,
			ContentType: ContentType(c.ContentType),
			HasWarning:  c.HasWarning,
			Score:       score,
		})
	}

	SortSnippets(snippets)
	if n > 0 && len(snippets) > n {
		snippets = snippets[:n]
	}
	return snippets, nil
}

// tokenize splits a query into match units: alphanumeric words for Latin
// text and digit runs, character bigrams for CJK runs.
func tokenize(query string) []string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tokens = append(tokens, t)
	}

	var latin []rune
	var cjk []rune
	flushLatin := func() {
		if len(latin) > 0 {
			add(strings.ToLower(string(latin)))
			latin = latin[:0]
		}
	}
	flushCJK := func() {
		if len(cjk) == 1 {
			add(string(cjk))
		}
		for i := 0; i+1 < len(cjk); i++ {
			add(string(cjk[i : i+2]))
		}
		cjk = cjk[:0]
	}

	for _, r := range query {
		switch {
		case (unicode.IsLetter(r) || unicode.IsNumber(r)) && r < 0x3000:
			flushCJK()
			latin = append(latin, r)
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			flushLatin()
			cjk = append(cjk, r)
		default:
			flushLatin()
			flushCJK()
		}
	}
	flushLatin()
	flushCJK()
	return tokens
}

// overlapScore is the fraction of query tokens present in the content.
func overlapScore(tokens []string, content string) float64 {
	lower := strings.ToLower(content)
	matched := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
