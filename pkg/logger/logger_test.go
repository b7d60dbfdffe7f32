package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

// TestInitialize tests level and format configuration.
func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "debug json", level: "debug", format: "json"},
		{name: "info text", level: "info", format: "text"},
		{name: "warn text", level: "warn", format: "text"},
		{name: "invalid level", level: "verbose", format: "text", wantErr: true},
		{name: "invalid format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Initialize(tt.level, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Error("Initialize() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Initialize() returned error: %v", err)
			}

			want, _ := logrus.ParseLevel(tt.level)
			if GetLevel() != want {
				t.Errorf("GetLevel() = %v, want %v", GetLevel(), want)
			}
		})
	}
}

// TestWithField tests structured field helpers return usable entries.
func TestWithField(t *testing.T) {
	entry := WithField("component", "proxy")
	if entry == nil {
		t.Fatal("WithField() returned nil entry")
	}
	if entry.Data["component"] != "proxy" {
		t.Errorf("entry field = %v, want proxy", entry.Data["component"])
	}
}
