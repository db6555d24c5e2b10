package store

import (
	"context"
)

// Driver is an interface for store database drivers.
type Driver interface {
	GetDB() any
	Close() error

	Migrate(ctx context.Context) error

	UpsertVehicle(ctx context.Context, vehicle *Vehicle) error
	ListVehicles(ctx context.Context) ([]*Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)

	CreateManualChunk(ctx context.Context, chunk *ManualChunk) error
	ListManualChunks(ctx context.Context, find *FindManualChunk) ([]*ManualChunk, error)
}

// Vehicle is a catalog entry.
type Vehicle struct {
	ID       string `json:"id"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Trim     string `json:"trim"`
	PhotoURL string `json:"photo_url"`
}

// ManualChunk is an ingested manual excerpt. Ingestion (extraction,
// chunking, content-type tagging) happens outside this service.
type ManualChunk struct {
	ID          int64
	VehicleID   string
	Content     string
	Page        int
	Section     string
	ContentType string
	HasWarning  bool
}

// FindManualChunk filters manual chunk listings.
type FindManualChunk struct {
	VehicleID   *string
	WarningOnly bool
}
