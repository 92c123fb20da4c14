package ingest

import (
	"testing"
	"time"
)

func TestParseFlexibleDateFormats(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		value  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "iso",
			value:  "2024-06-01",
			want:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "slash month first wins",
			value:  "03/04/2024",
			want:   time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "slash day first when month overflows",
			value:  "25/12/2024",
			want:   time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "dash month first",
			value:  "03-04-2024",
			want:   time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "dash day first when month overflows",
			value:  "25-12-2024",
			want:   time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "numeric serial",
			value:  "45000",
			want:   time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "textual fallback",
			value:  "Jan 2, 2024",
			want:   time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "empty falls back to now",
			value:  "",
			want:   now,
			wantOK: false,
		},
		{
			name:   "garbage falls back to now",
			value:  "not a date",
			want:   now,
			wantOK: false,
		},
		{
			name:   "pre-epoch year rejected",
			value:  "01/02/1899",
			want:   now,
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tc.value, now)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("parsed %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseFlexibleDateSerialFraction(t *testing.T) {
	now := time.Now()

	got, ok := ParseFlexibleDate("45000.5", now)
	if !ok {
		t.Fatal("expected fractional serial to parse")
	}
	want := time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parsed %v, want %v", got, want)
	}
}
