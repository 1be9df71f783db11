package audit

import (
	"strings"
	"testing"
	"unicode/utf8"

	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"寿司", 4, "寿"},
		{"寿司", 5, "寿"},
		{"寿司", 6, "寿司"},
		{"é", 1, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got, "truncate(%q, %d)", tt.in, tt.n)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestWriteLogTruncatesDescription(t *testing.T) {
	testutil.UseDB(t)

	err := WriteLog(database.DB, LogOptions{
		Actor:       testutil.Admin(),
		EntityType:  "restaurant",
		EntityID:    1,
		Action:      models.AuditActionUpdate,
		Description: "updated " + strings.Repeat("寿", 100),
		After:       map[string]string{"name": "x"},
	})
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, database.DB.First(&entry).Error)
	assert.True(t, utf8.ValidString(entry.Description))
	assert.LessOrEqual(t, len(entry.Description), 255)
	assert.Equal(t, "null", entry.BeforeData)
	assert.JSONEq(t, `{"name":"x"}`, entry.AfterData)
}
