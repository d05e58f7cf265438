package tracker

import (
	"testing"
	"time"

	"github.com/rewired-gh/putcall/internal/models"
)

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"  42", 42, false},
		{"-17", -17, false},
		{"+8", 8, false},
		{"42abc", 42, false},
		{"3.99", 3, false},
		{"1e5", 1, false},
		{"007", 7, false},
		{"0x1A", 0, false},
		{"", 0, true},
		{"   ", 0, true},
		{"abc", 0, true},
		{"-", 0, true},
		{"+-1", 0, true},
		{".5", 0, true},
		{"9007199254740991", 9007199254740991, false},
		{"-9007199254740991", -9007199254740991, false},
		{"9007199254740992", 0, true},
		{"-9007199254740992", 0, true},
		{"9223372036854775807", 0, true},
		{"-9223372036854775808", 0, true},
		{"9223372036854775808", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLeadingInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLeadingInt(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLeadingInt(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEntryTime(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	stamp := now.Add(-3 * time.Hour)

	tests := []struct {
		name   string
		entry  models.Entry
		want   time.Time
		wantOK bool
	}{
		{"timestamp wins", models.Entry{Time: "23:59", Timestamp: &stamp}, stamp, true},
		{"rfc3339", models.Entry{Time: "2026-10-16T12:00:00Z"}, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), true},
		{"date and time", models.Entry{Time: "2026-10-16 12:00"}, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), true},
		{"clock earlier today", models.Entry{Time: "07:30"}, time.Date(2026, 10, 17, 7, 30, 0, 0, time.UTC), true},
		{"clock later rolls back a day", models.Entry{Time: "09:00"}, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), true},
		{"twelve hour clock", models.Entry{Time: "07:30 am"}, time.Date(2026, 10, 17, 7, 30, 0, 0, time.UTC), true},
		{"garbage", models.Entry{Time: "later"}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := entryTime(tt.entry, now, time.UTC)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
