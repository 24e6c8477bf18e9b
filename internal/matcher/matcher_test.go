package matcher_test

import (
	"testing"

	"github.com/Ppaja/filemerge/internal/matcher"
)

func TestIsIgnoredComponentEquality(t *testing.T) {
	ignoreMatcher := matcher.New([]string{"node_modules", ".git"}, matcher.Options{})

	testCases := []struct {
		name         string
		relativePath string
		isDirectory  bool
		expected     bool
	}{
		{name: "directory name at root", relativePath: "node_modules", isDirectory: true, expected: true},
		{name: "directory name nested", relativePath: "src/node_modules", isDirectory: true, expected: true},
		{name: "component inside path", relativePath: "vendor/.git/config", isDirectory: false, expected: true},
		{name: "partial component does not match", relativePath: "node_modules_backup", isDirectory: true, expected: false},
		{name: "unrelated file", relativePath: "src/main.go", isDirectory: false, expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := ignoreMatcher.IsIgnored(testCase.relativePath, testCase.isDirectory)
			if result != testCase.expected {
				t.Fatalf("IsIgnored(%q) = %v, want %v", testCase.relativePath, result, testCase.expected)
			}
		})
	}
}

func TestIsIgnoredExtensionPattern(t *testing.T) {
	ignoreMatcher := matcher.New([]string{"*.log"}, matcher.Options{})

	if !ignoreMatcher.IsIgnored("app.log", false) {
		t.Fatal("expected top-level log file to be ignored")
	}
	if !ignoreMatcher.IsIgnored("deep/nested/trace.log", false) {
		t.Fatal("expected nested log file to be ignored")
	}
	if ignoreMatcher.IsIgnored("app.logx", false) {
		t.Fatal("did not expect a different extension to match")
	}
}

func TestIsIgnoredWildcardFullPath(t *testing.T) {
	ignoreMatcher := matcher.New([]string{"build/*.tmp", "cache?"}, matcher.Options{})

	if !ignoreMatcher.IsIgnored("build/scratch.tmp", false) {
		t.Fatal("expected wildcard path pattern to match")
	}
	if ignoreMatcher.IsIgnored("other/scratch.tmp", false) {
		t.Fatal("wildcard pattern matched outside its directory")
	}
	if !ignoreMatcher.IsIgnored("cache1", true) {
		t.Fatal("expected single-character wildcard to match")
	}
	if ignoreMatcher.IsIgnored("cache12", true) {
		t.Fatal("single-character wildcard matched two characters")
	}
}

func TestIsIgnoredCasePolicy(t *testing.T) {
	sensitiveMatcher := matcher.New([]string{"Build"}, matcher.Options{CaseInsensitive: false})
	insensitiveMatcher := matcher.New([]string{"Build"}, matcher.Options{CaseInsensitive: true})

	if sensitiveMatcher.IsIgnored("build", true) {
		t.Fatal("case-sensitive matcher matched a different case")
	}
	if !insensitiveMatcher.IsIgnored("build", true) {
		t.Fatal("case-insensitive matcher missed a different case")
	}
	if !insensitiveMatcher.IsIgnored("sub/BUILD", true) {
		t.Fatal("case-insensitive matcher missed an upper-case component")
	}
}

func TestNewDropsMalformedPatterns(t *testing.T) {
	ignoreMatcher := matcher.New([]string{"", "  ", "# a comment", "real", "real", "dir/"}, matcher.Options{})
	patterns := ignoreMatcher.Patterns()
	if len(patterns) != 2 {
		t.Fatalf("expected 2 cleaned patterns, got %v", patterns)
	}
	if patterns[0] != "real" || patterns[1] != "dir" {
		t.Fatalf("unexpected cleaned patterns: %v", patterns)
	}
}

func TestIsIgnoredInvalidPatternNeverPanics(t *testing.T) {
	ignoreMatcher := matcher.New([]string{"[unclosed"}, matcher.Options{})
	if ignoreMatcher.IsIgnored("anything.txt", false) {
		t.Fatal("invalid pattern should not match")
	}
}

func TestIsIgnoredRootNeverMatches(t *testing.T) {
	ignoreMatcher := matcher.New([]string{"*"}, matcher.Options{})
	if ignoreMatcher.IsIgnored(".", true) {
		t.Fatal("scan root must never be ignored")
	}
	if ignoreMatcher.IsIgnored("", true) {
		t.Fatal("empty path must never be ignored")
	}
}
