// Package vehicle provides catalog lookup and fuzzy search for vehicle
// identification.
package vehicle

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/autosense/store"
)

// Match pairs a catalog entry with its search score.
type Match struct {
	Vehicle *store.Vehicle `json:"vehicle"`
	Score   float64        `json:"score"`
}

// Service searches the vehicle catalog.
type Service struct {
	store *store.Store
}

// NewService creates a vehicle service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// GetByID returns the vehicle or nil when absent.
func (s *Service) GetByID(ctx context.Context, id string) (*store.Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

// Search ranks catalog entries against the query with weighted substring
// scoring over make, model, year, trim and id.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	vehicles, err := s.store.ListVehicles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}

	var matches []Match
	for _, v := range vehicles {
		score := matchScore(v, query)
		if score > 0 {
			matches = append(matches, Match{Vehicle: v, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Vehicle.ID < matches[j].Vehicle.ID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func matchScore(v *store.Vehicle, query string) float64 {
	score := 0.0
	fields := []struct {
		value  string
		weight float64
	}{
		{strings.ToLower(v.Make), 3.0},
		{strings.ToLower(v.Model), 3.0},
		{strconv.Itoa(v.Year), 2.0},
		{strings.ToLower(v.Trim), 1.0},
		{strings.ToLower(v.ID), 1.0},
	}
	for _, f := range fields {
		switch {
		case f.value == "":
		case strings.Contains(f.value, query):
			score += f.weight * 2
		case strings.Contains(query, f.value):
			score += f.weight
		default:
			for _, token := range strings.Fields(query) {
				if strings.Contains(f.value, token) {
					score += f.weight * 0.5
				}
			}
		}
	}
	return score
}
