package fileops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("cannot determine home directory: %v", err)
	}

	t.Setenv("GITID_TEST_DIR", "/opt/repos")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde prefix",
			input:    "~/Work",
			expected: filepath.Join(home, "Work"),
		},
		{
			name:     "bare tilde",
			input:    "~",
			expected: home,
		},
		{
			name:     "env variable",
			input:    "$GITID_TEST_DIR/acme",
			expected: "/opt/repos/acme",
		},
		{
			name:     "braced env variable",
			input:    "${GITID_TEST_DIR}/acme",
			expected: "/opt/repos/acme",
		},
		{
			name:     "absolute path unchanged",
			input:    "/home/user/Work",
			expected: "/home/user/Work",
		},
		{
			name:     "tilde in the middle unchanged",
			input:    "/data/~backup",
			expected: "/data/~backup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if !Exists(dir) {
		t.Error("Exists should be true for an existing directory")
	}
	if !Exists(file) {
		t.Error("Exists should be true for an existing file")
	}
	if Exists(filepath.Join(dir, "absent")) {
		t.Error("Exists should be false for a missing path")
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if !DirExists(dir) {
		t.Error("DirExists should be true for a directory")
	}
	if DirExists(file) {
		t.Error("DirExists should be false for a regular file")
	}
}

func TestValidatePathSecurity(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid absolute", "/home/user/Work", false},
		{"valid relative", "projects/acme", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"traversal", "../../etc/passwd", true},
		{"embedded traversal", "/home/user/../../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSecurity(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathSecurity(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestAbsolute(t *testing.T) {
	got, err := Absolute("/home/user/Work/")
	if err != nil {
		t.Fatalf("Absolute returned error: %v", err)
	}
	if got != "/home/user/Work" {
		t.Errorf("Absolute cleaned path = %q, want %q", got, "/home/user/Work")
	}
}
