package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "9:00", want: "09:00"},
		{in: "23:59", want: "23:59"},
		{in: "00:00", want: "00:00"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	// The zero-padded representation makes string comparison match
	// temporal comparison.
	assert.True(t, TimeOfDay("09:00") < TimeOfDay("10:30"))
	assert.True(t, TimeOfDay("09:59") < TimeOfDay("10:00"))
	assert.False(t, TimeOfDay("22:00") < TimeOfDay("09:00"))
}

func TestBookingOverlaps(t *testing.T) {
	b := Booking{StartTime: "10:00", EndTime: "12:00"}

	tests := []struct {
		name       string
		start, end TimeOfDay
		want       bool
	}{
		{name: "identical", start: "10:00", end: "12:00", want: true},
		{name: "contained", start: "10:30", end: "11:30", want: true},
		{name: "straddles start", start: "09:00", end: "10:30", want: true},
		{name: "straddles end", start: "11:30", end: "13:00", want: true},
		{name: "touches start", start: "08:00", end: "10:00", want: false},
		{name: "touches end", start: "12:00", end: "14:00", want: false},
		{name: "before", start: "07:00", end: "08:00", want: false},
		{name: "after", start: "13:00", end: "14:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Overlaps(tt.start, tt.end))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusMissed.Terminal())
}

func TestBookingStartEndAt(t *testing.T) {
	b := Booking{
		BookingDate: time.Date(2030, time.January, 15, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:30",
		EndTime:     "11:00",
	}

	start := b.StartAt(time.UTC)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 30, start.Minute())

	end := b.EndAt(time.UTC)
	assert.Equal(t, 11, end.Hour())
	assert.True(t, start.Before(end))
}

func TestActorOwns(t *testing.T) {
	b := &Booking{UserID: 7}
	assert.True(t, Actor{ID: 7}.Owns(b))
	assert.False(t, Actor{ID: 8}.Owns(b))
	assert.False(t, Actor{ID: 7}.Owns(nil))
}
