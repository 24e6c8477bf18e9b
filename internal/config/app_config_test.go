package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ppaja/filemerge/internal/config"
	"github.com/Ppaja/filemerge/internal/utils"
)

func writeConfigurationFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(directory, utils.ConfigFileName)
	if writeError := os.WriteFile(configurationPath, []byte(content), 0o644); writeError != nil {
		testInstance.Fatalf("writing configuration file: %v", writeError)
	}
	return configurationPath
}

func TestLoadApplicationConfigurationReadsLocalFile(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	writeConfigurationFile(testInstance, workingDirectory, `report:
  format: markdown
  output: out/merged.md
  clipboard: true
paths:
  exclude:
    - node_modules
    - "*.log"
  case_insensitive: true
tokens:
  enabled: true
  model: gpt-4o
`)

	loadedConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testInstance.Fatalf("loading configuration: %v", loadError)
	}

	if loadedConfiguration.Report.Format != "markdown" {
		testInstance.Errorf("format %q, expected markdown", loadedConfiguration.Report.Format)
	}
	if loadedConfiguration.Report.Output != "out/merged.md" {
		testInstance.Errorf("output %q, expected out/merged.md", loadedConfiguration.Report.Output)
	}
	if loadedConfiguration.Report.Clipboard == nil || !*loadedConfiguration.Report.Clipboard {
		testInstance.Error("clipboard default not loaded")
	}
	if len(loadedConfiguration.Paths.Exclude) != 2 {
		testInstance.Errorf("exclude patterns %v, expected two entries", loadedConfiguration.Paths.Exclude)
	}
	if loadedConfiguration.Paths.CaseInsensitive == nil || !*loadedConfiguration.Paths.CaseInsensitive {
		testInstance.Error("case_insensitive default not loaded")
	}
	if loadedConfiguration.Tokens.Enabled == nil || !*loadedConfiguration.Tokens.Enabled {
		testInstance.Error("token counting default not loaded")
	}
}

func TestLoadApplicationConfigurationMissingFileYieldsZeroValue(testInstance *testing.T) {
	loadedConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: testInstance.TempDir()})
	if loadError != nil {
		testInstance.Fatalf("loading configuration without files: %v", loadError)
	}
	if loadedConfiguration.Report.Format != "" {
		testInstance.Errorf("format %q, expected empty", loadedConfiguration.Report.Format)
	}
}

func TestApplicationConfigurationMerge(testInstance *testing.T) {
	baseClipboard := false
	overrideDepth := 3
	base := config.ApplicationConfiguration{
		Report: config.ReportConfiguration{Format: "plain", Output: "outputFolder/mergeOutput.txt", Clipboard: &baseClipboard},
		Paths:  config.PathConfiguration{Exclude: []string{"node_modules"}},
	}
	override := config.ApplicationConfiguration{
		Report: config.ReportConfiguration{Format: "markdown", MaxDepth: &overrideDepth},
		Paths:  config.PathConfiguration{Exclude: []string{"dist", "dist"}},
	}

	merged := base.Merge(override)

	if merged.Report.Format != "markdown" {
		testInstance.Errorf("merged format %q, expected markdown", merged.Report.Format)
	}
	if merged.Report.Output != "outputFolder/mergeOutput.txt" {
		testInstance.Errorf("merged output %q, expected the base value", merged.Report.Output)
	}
	if merged.Report.Clipboard == nil || *merged.Report.Clipboard {
		testInstance.Error("merged clipboard lost the base value")
	}
	if merged.Report.MaxDepth == nil || *merged.Report.MaxDepth != overrideDepth {
		testInstance.Error("merged max depth lost the override value")
	}
	if len(merged.Paths.Exclude) != 1 || merged.Paths.Exclude[0] != "dist" {
		testInstance.Errorf("merged exclude %v, expected the deduplicated override", merged.Paths.Exclude)
	}
}

func TestInitializeConfigurationLocal(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()

	writtenPath, initializeError := config.InitializeConfiguration(config.InitOptions{Target: config.InitTargetLocal, WorkingDirectory: workingDirectory})
	if initializeError != nil {
		testInstance.Fatalf("initializing configuration: %v", initializeError)
	}
	if writtenPath != filepath.Join(workingDirectory, utils.ConfigFileName) {
		testInstance.Errorf("configuration written to %s", writtenPath)
	}

	if _, secondError := config.InitializeConfiguration(config.InitOptions{Target: config.InitTargetLocal, WorkingDirectory: workingDirectory}); secondError == nil {
		testInstance.Fatal("re-initialization without force succeeded")
	}
	if _, forcedError := config.InitializeConfiguration(config.InitOptions{Target: config.InitTargetLocal, WorkingDirectory: workingDirectory, Force: true}); forcedError != nil {
		testInstance.Fatalf("forced re-initialization failed: %v", forcedError)
	}

	loadedConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testInstance.Fatalf("loading initialized configuration: %v", loadError)
	}
	if loadedConfiguration.Report.Format != "plain" {
		testInstance.Errorf("initialized format %q, expected plain", loadedConfiguration.Report.Format)
	}
}
