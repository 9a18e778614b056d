package source

import (
	"testing"
	"time"
)

func TestParseTimeValue(t *testing.T) {
	want := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   any
		want    time.Time
		wantErr bool
	}{
		{name: "time passthrough", input: want, want: want},
		{name: "rfc3339", input: "2026-08-28T10:30:00Z", want: want},
		{name: "sqlite text", input: "2026-08-28 10:30:00", want: want},
		{name: "sqlite text with offset", input: "2026-08-28 10:30:00+00:00", want: want},
		{name: "go string form", input: "2026-08-28 10:30:00 +0000 UTC", want: want},
		{name: "bytes", input: []byte("2026-08-28T10:30:00Z"), want: want},
		{name: "nil", input: nil, want: time.Time{}},
		{name: "empty string", input: "", want: time.Time{}},
		{name: "garbage", input: "last tuesday", wantErr: true},
		{name: "unsupported type", input: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeValue(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTimeValue(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("parseTimeValue(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		query  string
		want   string
	}{
		{
			name:   "postgres numbers placeholders",
			driver: "postgres",
			query:  "SELECT * FROM items WHERE updated_at >= ? OR created_at >= ?",
			want:   "SELECT * FROM items WHERE updated_at >= $1 OR created_at >= $2",
		},
		{
			name:   "sqlite untouched",
			driver: "sqlite",
			query:  "SELECT * FROM items WHERE updated_at >= ?",
			want:   "SELECT * FROM items WHERE updated_at >= ?",
		},
		{
			name:   "no placeholders",
			driver: "postgres",
			query:  "SELECT id, name FROM categories",
			want:   "SELECT id, name FROM categories",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &DB{driver: tt.driver}
			if got := db.rebind(tt.query); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
