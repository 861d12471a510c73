package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingIsActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{BookingStatusPending, true},
		{BookingStatusAccepted, true},
		{BookingStatusDenied, false},
		{BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		b := Booking{Status: tt.status}
		assert.Equal(t, tt.want, b.IsActive(), tt.status)
	}
}

func TestBookingDisplayColor(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{BookingStatusAccepted, "green"},
		{BookingStatusPending, "yellow"},
		{BookingStatusDenied, "red"},
		{BookingStatusCancelled, "gray"},
		{"unknown", "gray"},
	}

	for _, tt := range tests {
		b := Booking{Status: tt.status}
		assert.Equal(t, tt.want, b.DisplayColor(), tt.status)
	}
}
