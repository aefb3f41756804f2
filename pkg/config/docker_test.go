package config

import (
	"testing"
)

func TestResolveHost(t *testing.T) {
	tests := []struct {
		input    string
		inDocker bool
		expected string
	}{
		{"mydb.example.com", true, "mydb.example.com"},
		{"192.168.1.100", true, "192.168.1.100"},
		{"localhost", true, "host.docker.internal"},
		{"127.0.0.1", true, "host.docker.internal"},
		{"localhost", false, "localhost"},
	}

	for _, tt := range tests {
		result := resolveHost(tt.input, tt.inDocker)
		if result != tt.expected {
			t.Errorf("resolveHost(%q, %v) = %q, want %q", tt.input, tt.inDocker, result, tt.expected)
		}
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		input    string
		inDocker bool
		expected string
	}{
		{"http://localhost:8000", true, "http://host.docker.internal:8000"},
		{"http://127.0.0.1", true, "http://host.docker.internal"},
		{"https://dynamodb.us-east-1.amazonaws.com", true, "https://dynamodb.us-east-1.amazonaws.com"},
		{"http://localhost:8000", false, "http://localhost:8000"},
		{"", true, ""},
	}

	for _, tt := range tests {
		result := resolveEndpoint(tt.input, tt.inDocker)
		if result != tt.expected {
			t.Errorf("resolveEndpoint(%q, %v) = %q, want %q", tt.input, tt.inDocker, result, tt.expected)
		}
	}
}

func TestResolveHostForDocker_RemoteHostUnchanged(t *testing.T) {
	// Remote hosts are never rewritten regardless of Docker status.
	if got := ResolveHostForDocker("mydb.example.com"); got != "mydb.example.com" {
		t.Errorf("ResolveHostForDocker = %q", got)
	}
}
