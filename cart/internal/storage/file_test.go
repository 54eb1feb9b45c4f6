package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/ordering/internal/domain"
)

func TestFileStorageLoadMissingFileIsEmpty(t *testing.T) {
	st := NewFileStorage(filepath.Join(t.TempDir(), "greenPlateCart.json"))
	items, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileStorageSaveLoadRoundTrip(t *testing.T) {
	c := context.Background()
	st := NewFileStorage(filepath.Join(t.TempDir(), "nested", "greenPlateCart.json"))

	impact := 1.8
	saved := []domain.CartItem{
		{
			ID:             "gb2",
			Name:           "Hummus Platter",
			Price:          domain.PriceFromString("$11.99"),
			Quantity:       2,
			IsVegan:        true,
			DietaryType:    domain.DietaryVegan,
			CO2Impact:      &impact,
			RestaurantName: "Green Garden Bistro",
		},
	}
	require.NoError(t, st.Save(c, saved))

	loaded, err := st.Load(c)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, saved[0].ID, loaded[0].ID)
	assert.Equal(t, saved[0].Quantity, loaded[0].Quantity)
	assert.Equal(t, "$11.99", loaded[0].Price.Display())
	require.NotNil(t, loaded[0].CO2Impact)
	assert.InDelta(t, impact, *loaded[0].CO2Impact, 1e-9)
}

func TestFileStorageSaveReplacesPreviousSnapshot(t *testing.T) {
	c := context.Background()
	st := NewFileStorage(filepath.Join(t.TempDir(), "greenPlateCart.json"))

	require.NoError(t, st.Save(c, []domain.CartItem{{ID: "a", Name: "First", Quantity: 1}}))
	require.NoError(t, st.Save(c, []domain.CartItem{}))

	loaded, err := st.Load(c)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStorageLoadCorruptSnapshotErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greenPlateCart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStorage(path).Load(context.Background())
	assert.Error(t, err)
}
