package vehicle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/autosense/internal/profile"
	"github.com/hrygo/autosense/store"
)

type fakeDriver struct {
	vehicles []*store.Vehicle
}

func (d *fakeDriver) GetDB() any { return nil }

func (d *fakeDriver) Close() error { return nil }

func (d *fakeDriver) Migrate(context.Context) error { return nil }

func (d *fakeDriver) UpsertVehicle(_ context.Context, v *store.Vehicle) error {
	d.vehicles = append(d.vehicles, v)
	return nil
}

func (d *fakeDriver) ListVehicles(context.Context) ([]*store.Vehicle, error) {
	return d.vehicles, nil
}

func (d *fakeDriver) GetVehicle(_ context.Context, id string) (*store.Vehicle, error) {
	for _, v := range d.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (d *fakeDriver) CreateManualChunk(context.Context, *store.ManualChunk) error {
	return nil
}

func (d *fakeDriver) ListManualChunks(context.Context, *store.FindManualChunk) ([]*store.ManualChunk, error) {
	return nil, nil
}

func newTestService() *Service {
	driver := &fakeDriver{vehicles: []*store.Vehicle{
		{ID: "toyota-aqua-2021", Make: "トヨタ", Model: "アクア", Year: 2021, Trim: "G"},
		{ID: "toyota-prius-2019", Make: "トヨタ", Model: "プリウス", Year: 2019, Trim: "A"},
		{ID: "honda-fit-2020", Make: "ホンダ", Model: "フィット", Year: 2020, Trim: "HOME"},
	}}
	return NewService(store.New(driver, &profile.Profile{}))
}

func TestSearch_RanksByRelevance(t *testing.T) {
	svc := newTestService()

	matches, err := svc.Search(context.Background(), "アクア", 10)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "toyota-aqua-2021", matches[0].Vehicle.ID)

	// a make query matches both Toyota entries
	matches, err = svc.Search(context.Background(), "トヨタ", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// makers not in the catalog match nothing
	matches, err = svc.Search(context.Background(), "スバル", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_EmptyQueryAndLimit(t *testing.T) {
	svc := newTestService()

	matches, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = svc.Search(context.Background(), "トヨタ", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearch_TieBreakIsDeterministic(t *testing.T) {
	svc := newTestService()

	// both Toyota entries score identically on the make; order falls back
	// to the vehicle id
	matches, err := svc.Search(context.Background(), "トヨタ", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "toyota-aqua-2021", matches[0].Vehicle.ID)
	assert.Equal(t, "toyota-prius-2019", matches[1].Vehicle.ID)
}

func TestGetByID(t *testing.T) {
	svc := newTestService()

	v, err := svc.GetByID(context.Background(), "honda-fit-2020")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "フィット", v.Model)

	v, err = svc.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}
