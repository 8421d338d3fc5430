package ui

import "testing"

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name     string
		geometry string
		wantW    float32
		wantH    float32
	}{
		{"valid", "1280x800", 1280, 800},
		{"default on empty", "", WindowDefaultWidth, WindowDefaultHeight},
		{"default on garbage", "huge", WindowDefaultWidth, WindowDefaultHeight},
		{"default on partial", "1280x", WindowDefaultWidth, WindowDefaultHeight},
		{"default on negative", "-10x200", WindowDefaultWidth, WindowDefaultHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := parseGeometry(tt.geometry)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("parseGeometry(%q) = %vx%v, want %vx%v", tt.geometry, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
