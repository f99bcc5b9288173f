package filter

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestShouldTrack(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		want    bool
	}{
		{
			name:    "simple include match",
			include: []string{"**/*.py"},
			path:    "src/app.py",
			want:    true,
		},
		{
			name:    "top-level file matches doublestar include",
			include: []string{"**/*.py"},
			path:    "app.py",
			want:    true,
		},
		{
			name:    "no include match",
			include: []string{"**/*.py"},
			path:    "src/app.go",
			want:    false,
		},
		{
			name:    "exclude wins over include",
			include: []string{"**/*.py"},
			exclude: []string{"**/.git/**"},
			path:    ".git/hooks/pre-commit.py",
			want:    false,
		},
		{
			name:    "descendant of ignored directory",
			include: []string{"**/*.py"},
			exclude: []string{"**/venv/**"},
			path:    "project/venv/lib/site.py",
			want:    false,
		},
		{
			name:    "path equal to ignored directory",
			include: []string{"**"},
			exclude: []string{"**/node_modules/**"},
			path:    "web/node_modules",
			want:    false,
		},
		{
			name:    "empty include tracks nothing",
			include: nil,
			path:    "main.go",
			want:    false,
		},
		{
			name:    "deeply nested include match",
			include: []string{"**/*.md"},
			path:    "docs/guide/advanced/tips.md",
			want:    true,
		},
		{
			name:    "non-glob exclude of a single file",
			include: []string{"**/*.json"},
			exclude: []string{"secrets.json"},
			path:    "secrets.json",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("New returned unexpected error: %v", err)
			}
			if got := f.ShouldTrack(tt.path); got != tt.want {
				t.Errorf("ShouldTrack(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExcluded(t *testing.T) {
	f, err := New([]string{"**/*.go"}, []string{"**/.git/**", "**/node_modules/**"})
	if err != nil {
		t.Fatal(err)
	}

	for path, want := range map[string]bool{
		".git":             true,
		".git/objects/ab":  true,
		"web/node_modules": true,
		"src":              false,
		"src/main.go":      false,
		"README.md":        false,
	} {
		if got := f.Excluded(path); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestNewRejectsMalformedPattern(t *testing.T) {
	_, err := New([]string{"[unclosed"}, nil)
	if err == nil {
		t.Fatal("expected error for malformed include pattern, got nil")
	}
	var perr *PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PatternError, got %T: %v", err, err)
	}
	if perr.Pattern != "[unclosed" {
		t.Errorf("PatternError.Pattern = %q, want %q", perr.Pattern, "[unclosed")
	}

	_, err = New(nil, []string{"[also-bad"})
	if err == nil {
		t.Fatal("expected error for malformed exclude pattern, got nil")
	}
}

// Property: a path matching any exclude pattern is never tracked, no matter
// which include patterns are configured.
func TestExcludeAlwaysWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "dir")
		file := rapid.StringMatching(`[a-z]{1,8}\.(go|py|md)`).Draw(t, "file")
		path := dir + "/" + file

		// Include patterns that definitely match the path, plus noise.
		include := []string{"**", "**/*." + file[len(file)-2:], path}

		f, err := New(include, []string{"**/" + file, dir + "/**"})
		if err != nil {
			t.Fatalf("New returned unexpected error: %v", err)
		}
		if f.ShouldTrack(path) {
			t.Fatalf("path %q tracked despite matching an exclude pattern", path)
		}
	})
}

// Property: with no exclude patterns, tracking is exactly "matches some
// include pattern".
func TestIncludeOnlyMatching(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "dir")
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name")
		ext := rapid.SampledFrom([]string{"go", "py", "md", "txt"}).Draw(t, "ext")
		path := dir + "/" + name + "." + ext

		f, err := New([]string{"**/*.go", "**/*.py"}, nil)
		if err != nil {
			t.Fatalf("New returned unexpected error: %v", err)
		}

		want := ext == "go" || ext == "py"
		if got := f.ShouldTrack(path); got != want {
			t.Fatalf("ShouldTrack(%q) = %v, want %v", path, got, want)
		}
	})
}
