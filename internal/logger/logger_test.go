package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		dev     bool
		wantErr bool
	}{
		{"info", false, false},
		{"debug", true, false},
		{"WARN", false, false},
		{"verbose", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New("test", tt.level, tt.dev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) err = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if l != nil {
				_ = l.Sync()
			}
		})
	}
}
