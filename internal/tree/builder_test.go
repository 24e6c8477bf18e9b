package tree_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Ppaja/filemerge/internal/matcher"
	"github.com/Ppaja/filemerge/internal/tree"
)

// createScanFixture lays out a small project under a temporary directory:
//
//	root/
//	├── .git/config
//	├── docs/guide.md
//	├── src/main.go
//	└── README.md
func createScanFixture(testInstance *testing.T) string {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()

	directories := []string{".git", "docs", "src"}
	for _, directoryName := range directories {
		if makeDirectoryError := os.Mkdir(filepath.Join(rootDirectory, directoryName), 0o755); makeDirectoryError != nil {
			testInstance.Fatalf("creating directory %s: %v", directoryName, makeDirectoryError)
		}
	}
	files := map[string]string{
		filepath.Join(".git", "config"):   "[core]\n",
		filepath.Join("docs", "guide.md"): "# Guide\n",
		filepath.Join("src", "main.go"):   "package main\n",
		"README.md":                       "readme\n",
	}
	for relativeFilePath, fileContent := range files {
		if writeError := os.WriteFile(filepath.Join(rootDirectory, relativeFilePath), []byte(fileContent), 0o644); writeError != nil {
			testInstance.Fatalf("writing file %s: %v", relativeFilePath, writeError)
		}
	}
	return rootDirectory
}

func TestBuildScansAndInitializesSelection(testInstance *testing.T) {
	rootDirectory := createScanFixture(testInstance)
	ignoreMatcher := matcher.New([]string{".git"}, matcher.Options{})

	rootNode, warnings, buildError := tree.Build(context.Background(), rootDirectory, ignoreMatcher, tree.BuildOptions{})
	if buildError != nil {
		testInstance.Fatalf("build failed: %v", buildError)
	}
	if len(warnings) != 0 {
		testInstance.Fatalf("unexpected warnings: %v", warnings)
	}

	gitNode := rootNode.Find(".git")
	if gitNode == nil {
		testInstance.Fatal("ignored directory missing from tree")
	}
	if !gitNode.Ignored {
		testInstance.Error("matched directory not marked ignored")
	}
	if len(gitNode.Children) != 0 {
		testInstance.Error("scan descended into an ignored directory")
	}

	readmeNode := rootNode.Find("README.md")
	if readmeNode == nil {
		testInstance.Fatal("README.md missing from tree")
	}
	if readmeNode.SizeBytes != int64(len("readme\n")) {
		testInstance.Errorf("README.md size %d, expected %d", readmeNode.SizeBytes, len("readme\n"))
	}
	if readmeNode.Selection != tree.Selected {
		testInstance.Error("eligible file not selected by default")
	}
	if rootNode.Selection != tree.Selected {
		testInstance.Errorf("root selection %s, expected selected", rootNode.Selection)
	}
}

func TestBuildIsDeterministic(testInstance *testing.T) {
	rootDirectory := createScanFixture(testInstance)
	ignoreMatcher := matcher.New(nil, matcher.Options{})

	collectOrder := func() []string {
		rootNode, _, buildError := tree.Build(context.Background(), rootDirectory, ignoreMatcher, tree.BuildOptions{})
		if buildError != nil {
			testInstance.Fatalf("build failed: %v", buildError)
		}
		var order []string
		rootNode.Walk(func(node *tree.Node) {
			order = append(order, node.RelativePath)
		})
		return order
	}

	firstOrder := collectOrder()
	secondOrder := collectOrder()
	if len(firstOrder) != len(secondOrder) {
		testInstance.Fatalf("scan produced %d then %d nodes", len(firstOrder), len(secondOrder))
	}
	for nodeIndex := range firstOrder {
		if firstOrder[nodeIndex] != secondOrder[nodeIndex] {
			testInstance.Fatalf("node %d differs between scans: %s vs %s", nodeIndex, firstOrder[nodeIndex], secondOrder[nodeIndex])
		}
	}
}

func TestBuildRootErrors(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), "plain.txt")
	if writeError := os.WriteFile(filePath, []byte("content"), 0o644); writeError != nil {
		testInstance.Fatalf("writing fixture file: %v", writeError)
	}

	testCases := []struct {
		name     string
		rootPath string
	}{
		{name: "missing root", rootPath: filepath.Join(testInstance.TempDir(), "absent")},
		{name: "root is a file", rootPath: filePath},
	}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			_, _, buildError := tree.Build(context.Background(), testCase.rootPath, matcher.New(nil, matcher.Options{}), tree.BuildOptions{})
			if buildError == nil {
				subTest.Fatal("expected build error")
			}
		})
	}
}

func TestBuildCancellation(testInstance *testing.T) {
	rootDirectory := createScanFixture(testInstance)
	cancelledContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	_, _, buildError := tree.Build(cancelledContext, rootDirectory, matcher.New(nil, matcher.Options{}), tree.BuildOptions{})
	if buildError == nil {
		testInstance.Fatal("expected cancellation error")
	}
}

func TestBuildMaxDepth(testInstance *testing.T) {
	rootDirectory := createScanFixture(testInstance)
	ignoreMatcher := matcher.New(nil, matcher.Options{})

	rootNode, _, buildError := tree.Build(context.Background(), rootDirectory, ignoreMatcher, tree.BuildOptions{MaxDepth: 1})
	if buildError != nil {
		testInstance.Fatalf("build failed: %v", buildError)
	}

	docsNode := rootNode.Find("docs")
	if docsNode == nil {
		testInstance.Fatal("first-level directory missing from depth-limited tree")
	}
	if len(docsNode.Children) != 0 {
		testInstance.Error("scan entered a directory beyond the depth limit")
	}
	if rootNode.Find("docs/guide.md") != nil {
		testInstance.Error("depth-limited tree contains a second-level file")
	}
}

func TestBuildReportsProgress(testInstance *testing.T) {
	rootDirectory := createScanFixture(testInstance)

	var lastReportedCount int
	progressCallback := func(entriesScanned int) {
		lastReportedCount = entriesScanned
	}
	_, _, buildError := tree.Build(context.Background(), rootDirectory, matcher.New(nil, matcher.Options{}), tree.BuildOptions{Progress: progressCallback})
	if buildError != nil {
		testInstance.Fatalf("build failed: %v", buildError)
	}
	if lastReportedCount != 7 {
		testInstance.Errorf("final progress count %d, expected 7", lastReportedCount)
	}
}

func TestBuildSymlinkCycleIsTruncated(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("symlink creation requires elevated privileges on windows")
	}
	rootDirectory := testInstance.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, "nested")
	if makeDirectoryError := os.Mkdir(nestedDirectory, 0o755); makeDirectoryError != nil {
		testInstance.Fatalf("creating nested directory: %v", makeDirectoryError)
	}
	if symlinkError := os.Symlink(rootDirectory, filepath.Join(nestedDirectory, "loop")); symlinkError != nil {
		testInstance.Skipf("symlink unsupported: %v", symlinkError)
	}

	rootNode, warnings, buildError := tree.Build(context.Background(), rootDirectory, matcher.New(nil, matcher.Options{}), tree.BuildOptions{})
	if buildError != nil {
		testInstance.Fatalf("build failed: %v", buildError)
	}
	if len(warnings) != 1 {
		testInstance.Fatalf("warnings %d, expected one cycle warning: %v", len(warnings), warnings)
	}
	loopNode := rootNode.Find("nested/loop")
	if loopNode == nil {
		testInstance.Fatal("cycle node missing from tree")
	}
	if !loopNode.Ignored {
		testInstance.Error("cycle node not marked ignored")
	}
	if len(loopNode.Children) != 0 {
		testInstance.Error("scan descended into a symlink cycle")
	}
}

func TestBuildUnreadableDirectoryBecomesWarning(testInstance *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		testInstance.Skip("permission denial is not enforceable in this environment")
	}
	rootDirectory := testInstance.TempDir()
	sealedDirectory := filepath.Join(rootDirectory, "sealed")
	if makeDirectoryError := os.Mkdir(sealedDirectory, 0o755); makeDirectoryError != nil {
		testInstance.Fatalf("creating sealed directory: %v", makeDirectoryError)
	}
	if permissionError := os.Chmod(sealedDirectory, 0o000); permissionError != nil {
		testInstance.Fatalf("sealing directory: %v", permissionError)
	}
	testInstance.Cleanup(func() {
		_ = os.Chmod(sealedDirectory, 0o755)
	})

	rootNode, warnings, buildError := tree.Build(context.Background(), rootDirectory, matcher.New(nil, matcher.Options{}), tree.BuildOptions{})
	if buildError != nil {
		testInstance.Fatalf("build failed: %v", buildError)
	}
	if len(warnings) != 1 {
		testInstance.Fatalf("warnings %d, expected one unreadable warning: %v", len(warnings), warnings)
	}
	sealedNode := rootNode.Find("sealed")
	if sealedNode == nil {
		testInstance.Fatal("unreadable directory missing from tree")
	}
	if !sealedNode.Unreadable || !sealedNode.Ignored {
		testInstance.Error("unreadable directory not marked unreadable and ignored")
	}
}
