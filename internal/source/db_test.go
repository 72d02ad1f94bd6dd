package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandNamedParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		params   map[string]any
		want     string
		wantArgs []any
		wantErr  bool
	}{
		{
			name:     "single parameter",
			query:    "SELECT v FROM t WHERE code = :code",
			params:   map[string]any{"code": "TW_LEADING"},
			want:     "SELECT v FROM t WHERE code = ?",
			wantArgs: []any{"TW_LEADING"},
		},
		{
			name:     "arguments follow appearance order",
			query:    "SELECT v FROM t WHERE d BETWEEN :start AND :end AND code = :code",
			params:   map[string]any{"code": "X", "start": "2024-01-01", "end": "2024-12-31"},
			want:     "SELECT v FROM t WHERE d BETWEEN ? AND ? AND code = ?",
			wantArgs: []any{"2024-01-01", "2024-12-31", "X"},
		},
		{
			name:     "repeated parameter binds twice",
			query:    "SELECT v FROM t WHERE a = :x OR b = :x",
			params:   map[string]any{"x": 7},
			want:     "SELECT v FROM t WHERE a = ? OR b = ?",
			wantArgs: []any{7, 7},
		},
		{
			name:    "missing parameter is an error",
			query:   "SELECT v FROM t WHERE code = :code",
			params:  map[string]any{},
			wantErr: true,
		},
		{
			name:     "unused parameters are ignored",
			query:    "SELECT v FROM t",
			params:   map[string]any{"extra": 1},
			want:     "SELECT v FROM t",
			wantArgs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args, err := expandNamedParams(tt.query, tt.params)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestScanDate(t *testing.T) {
	want := day(2024, time.March, 15)

	tests := []struct {
		name string
		in   any
		ok   bool
	}{
		{name: "time.Time", in: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC), ok: true},
		{name: "bytes", in: []byte("2024-03-15"), ok: true},
		{name: "string", in: "2024/03/15", ok: true},
		{name: "nil", in: nil, ok: false},
		{name: "number", in: int64(20240315), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanDate(tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestScanFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{name: "float64", in: 1.5, want: 1.5, ok: true},
		{name: "int64", in: int64(3), want: 3, ok: true},
		{name: "bytes", in: []byte("2.72"), want: 2.72, ok: true},
		{name: "string", in: "-2.68", want: -2.68, ok: true},
		{name: "nil", in: nil, ok: false},
		{name: "text", in: "n/a", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanFloat(tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
