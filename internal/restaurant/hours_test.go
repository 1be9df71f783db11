package restaurant

import (
	"context"
	"testing"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSpan(t *testing.T) {
	assert.NoError(t, checkSpan("MON", "09:00", "17:30", false))
	assert.NoError(t, checkSpan("MON", "", "", true))
	assert.Error(t, checkSpan("MON", "9am", "17:30", false))
	assert.Error(t, checkSpan("MON", "25:00", "17:30", false))
	assert.Error(t, checkSpan("MON", "09:00", "", false))
}

func TestSetHours(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	r := testutil.Restaurant(t, owner, "Olive Tree", true)
	xmas := testutil.Catalog[models.Holiday](t, "Christmas Day")
	boxing := testutil.Catalog[models.Holiday](t, "Boxing Day")

	view, err := SetHours(ctx, owner, r.ID, HoursInput{
		OperatingHours: &[]DayHours{
			{Day: "SUN", IsClosed: true},
			{Day: "MON", OpenTime: "09:00", CloseTime: "17:00"},
		},
		HolidayHours: &[]HolidayHoursInput{
			{HolidayID: xmas.ID},
			{HolidayID: boxing.ID, OpenTime: str("10:00"), CloseTime: str("14:00"), IsClosed: ptrBool(false)},
		},
	})
	require.NoError(t, err)

	require.Len(t, view.OperatingHours, 2)
	assert.Equal(t, "MON", view.OperatingHours[0].Day, "weekday order")
	require.Len(t, view.HolidayHours, 2)
	assert.Equal(t, "Boxing Day", view.HolidayHours[0].HolidayName)
	assert.False(t, view.HolidayHours[0].IsClosed)
	assert.True(t, view.HolidayHours[1].IsClosed, "holidays default to closed")

	// only holiday hours sent: weekdays stay
	view, err = SetHours(ctx, owner, r.ID, HoursInput{HolidayHours: &[]HolidayHoursInput{}})
	require.NoError(t, err)
	assert.Len(t, view.OperatingHours, 2)
	assert.Empty(t, view.HolidayHours)
}

func TestSetHoursValidation(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	r := testutil.Restaurant(t, owner, "Olive Tree", true)
	retired := testutil.Catalog[models.Holiday](t, "Retired Day")
	require.NoError(t, database.DB.Model(retired).Update("is_active", false).Error)

	cases := map[string]HoursInput{
		"nothing":      {},
		"bad day":      {OperatingHours: &[]DayHours{{Day: "FUNDAY", IsClosed: true}}},
		"day twice":    {OperatingHours: &[]DayHours{{Day: "MON", IsClosed: true}, {Day: "MON", IsClosed: true}}},
		"open no time": {OperatingHours: &[]DayHours{{Day: "TUE"}}},
		"retired":      {HolidayHours: &[]HolidayHoursInput{{HolidayID: retired.ID}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := SetHours(ctx, owner, r.ID, in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	_, err := SetHours(ctx, owner, r.ID, HoursInput{HolidayHours: &[]HolidayHoursInput{{HolidayID: 424242}}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func ptrBool(b bool) *bool { return &b }
