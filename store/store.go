// Package store provides the persistence layer for the vehicle catalog
// and ingested manual chunks.
package store

import (
	"context"

	"github.com/hrygo/autosense/internal/profile"
)

// Store provides database access to the catalog and manual corpus.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		profile: profile,
		driver:  driver,
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) UpsertVehicle(ctx context.Context, vehicle *Vehicle) error {
	return s.driver.UpsertVehicle(ctx, vehicle)
}

func (s *Store) ListVehicles(ctx context.Context) ([]*Vehicle, error) {
	return s.driver.ListVehicles(ctx)
}

func (s *Store) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	return s.driver.GetVehicle(ctx, id)
}

func (s *Store) CreateManualChunk(ctx context.Context, chunk *ManualChunk) error {
	return s.driver.CreateManualChunk(ctx, chunk)
}

func (s *Store) ListManualChunks(ctx context.Context, find *FindManualChunk) ([]*ManualChunk, error) {
	return s.driver.ListManualChunks(ctx, find)
}
