package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekHoursValidate(t *testing.T) {
	t.Parallel()

	valid := WeekHours{
		"monday":  {IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
		"tuesday": {IsOpen: false},
		"sunday":  {IsOpen: true, IsAllDay: true},
	}
	require.NoError(t, valid.Validate())

	missing := WeekHours{"monday": {IsOpen: true}}
	assert.Error(t, missing.Validate(), "open day without times")

	inverted := WeekHours{"monday": {IsOpen: true, OpenTime: "17:00", CloseTime: "09:00"}}
	assert.Error(t, inverted.Validate(), "closes before it opens")

	// Closed days carry no window requirements.
	closed := WeekHours{"friday": {IsOpen: false, OpenTime: "bogus"}}
	assert.NoError(t, closed.Validate())
}

func TestWeekHoursRoundTrip(t *testing.T) {
	t.Parallel()

	original := WeekHours{
		"monday": {IsOpen: true, OpenTime: "08:30", CloseTime: "18:00"},
		"sunday": {IsOpen: true, IsAllDay: true},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded WeekHours
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestWeekHoursScanNil(t *testing.T) {
	t.Parallel()

	decoded := WeekHours{"monday": {IsOpen: true}}
	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}
