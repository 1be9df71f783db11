package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
categories:
  - { name: Breakfast, display_order: 1, special_notes: "Until 10:30am" }
  - { name: Mains, display_order: 2 }
pricing_titles:
  - { name: Dine In }
  - { name: Takeaway }
holidays:
  - { name: "New Year's Day", code: new-years-day }
amenity_categories:
  - name: Connectivity
    amenities:
      - { name: Free WiFi, code: wifi }
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	f, err := LoadSeedFile(writeSeed(t))
	require.NoError(t, err)

	require.Len(t, f.Categories, 2)
	assert.Equal(t, "Until 10:30am", f.Categories[0].SpecialNotes)
	assert.Equal(t, "new-years-day", f.Holidays[0].Code)
	require.Len(t, f.AmenityCategories, 1)
	assert.Equal(t, "wifi", f.AmenityCategories[0].Amenities[0].Code)
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	f, err := LoadSeedFile(writeSeed(t))
	require.NoError(t, err)

	report, err := Seed(ctx, testutil.Admin(), f)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 0}, report[Categories.Slug])
	assert.Equal(t, [2]int{2, 0}, report[PricingTitles.Slug])
	assert.Equal(t, [2]int{1, 0}, report[Holidays.Slug])

	report, err = Seed(ctx, testutil.Admin(), f)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 2}, report[Categories.Slug])
	assert.Equal(t, [2]int{0, 1}, report[Holidays.Slug])

	var cats []models.MenuCategory
	require.NoError(t, database.DB.Order("id").Find(&cats).Error)
	require.Len(t, cats, 2)
	assert.True(t, cats[0].IsDefault)
	assert.Equal(t, "breakfast", cats[0].Code)
}
