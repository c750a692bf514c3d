package browser

import (
	"runtime"
	"testing"
)

func TestOpen(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := start
	start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	t.Cleanup(func() { start = orig })

	if _, _, err := command(runtime.GOOS, ""); err != nil {
		t.Skipf("no browser command on %s", runtime.GOOS)
	}
	if err := Open("http://localhost:8000/docs"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotName == "" || gotArgs[len(gotArgs)-1] != "http://localhost:8000/docs" {
		t.Errorf("started %q %v", gotName, gotArgs)
	}
}

func TestOpenRejectsOtherSchemes(t *testing.T) {
	orig := start
	start = func(string, ...string) error {
		t.Error("command started for rejected URL")
		return nil
	}
	t.Cleanup(func() { start = orig })

	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "localhost:8000"} {
		if err := Open(u); err == nil {
			t.Errorf("Open(%q) = nil, want error", u)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		name, args, err := command(tt.goos, "https://example.com")
		if err != nil || name != tt.name || args[len(args)-1] != "https://example.com" {
			t.Errorf("command(%q) = %q %v %v", tt.goos, name, args, err)
		}
	}
	if _, _, err := command("plan9", "https://example.com"); err == nil {
		t.Error("command(plan9) = nil error")
	}
}
