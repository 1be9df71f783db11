package catalog

import (
	"bytes"
	"context"
	"testing"

	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportSheet(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	testutil.Catalog[models.Allergen](t, "Peanuts")

	buf := sheet(t, [][]string{
		{"Name", "Description"},
		{"Peanuts", "already there"},
		{"Shellfish", "prawns, crab, lobster"},
		{"", ""},
		{"!!!", ""},
		{"Sesame"},
	})

	res, err := ImportSheet[models.Allergen](ctx, Allergens, testutil.Admin(), buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shellfish", "Sesame"}, res.Created)
	assert.Equal(t, []string{"Peanuts"}, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 5")

	rows, err := List[models.Allergen](ctx, Allergens, false)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestImportSheetRejectsGarbage(t *testing.T) {
	testutil.UseDB(t)

	_, err := ImportSheet[models.Allergen](context.Background(), Allergens, testutil.Admin(),
		bytes.NewBufferString("not a spreadsheet"))
	assert.Error(t, err)
}
