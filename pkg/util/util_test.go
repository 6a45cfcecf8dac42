package util

import (
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
)

func TestEventDate(t *testing.T) {
	tests := []struct {
		name    string
		start   *calendar.EventDateTime
		want    string
		wantErr bool
	}{
		{
			name:  "timed event",
			start: &calendar.EventDateTime{DateTime: "2024-06-07T09:30:00+09:00"},
			want:  "2024-06-07",
		},
		{
			name:  "all-day event",
			start: &calendar.EventDateTime{Date: "2024-06-07"},
			want:  "2024-06-07",
		},
		{
			name:  "date-time preferred over date",
			start: &calendar.EventDateTime{DateTime: "2024-06-08T00:00:00Z", Date: "2024-06-07"},
			want:  "2024-06-08",
		},
		{
			name:  "offset is not converted",
			start: &calendar.EventDateTime{DateTime: "2024-06-07T23:30:00-10:00"},
			want:  "2024-06-07",
		},
		{name: "no start", wantErr: true},
		{name: "empty start", start: &calendar.EventDateTime{}, wantErr: true},
		{name: "garbage", start: &calendar.EventDateTime{Date: "tomorrow!!"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EventDate(&calendar.Event{Summary: tt.name, Start: tt.start})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got date %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EventDate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEventDateNil(t *testing.T) {
	if _, err := EventDate(nil); err == nil {
		t.Error("Expected error for nil event")
	}
}

func TestDateOf(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2024, 6, 6, 16, 0, 0, 0, time.UTC)
	if got := DateOf(ts.In(tokyo)); got != "2024-06-07" {
		t.Errorf("Expected 2024-06-07, got %s", got)
	}
	if got := DateOf(ts); got != "2024-06-06" {
		t.Errorf("Expected 2024-06-06, got %s", got)
	}
}
