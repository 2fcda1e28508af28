package domain

import "testing"

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"active", "In Sync"},
		{"expired", "Action Required"},
		{"error", "Error"},
		{"disconnected", "Disconnected"},
		{"pending", "Unknown"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.status); got != tt.want {
			t.Errorf("StatusLabel(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPrimaryAction(t *testing.T) {
	tests := []struct {
		status string
		want   Action
	}{
		{"active", ActionConfigure},
		{"expired", ActionReconnect},
		{"error", ActionReconnect},
		{"disconnected", ActionConnect},
		{"ACTIVE", ActionConnect},
		{"something-new", ActionConnect},
		{"", ActionConnect},
	}
	for _, tt := range tests {
		if got := PrimaryAction(tt.status); got != tt.want {
			t.Errorf("PrimaryAction(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestToggleOn(t *testing.T) {
	for _, s := range []string{"active", "expired", "error"} {
		if !ToggleOn(s) {
			t.Errorf("ToggleOn(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"disconnected", "", "unknown"} {
		if ToggleOn(s) {
			t.Errorf("ToggleOn(%q) = true, want false", s)
		}
	}
}
