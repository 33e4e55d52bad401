package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/brancho/cmd/cli"
	"github.com/temirov/brancho/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func readReadmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func TestReadmeConfigurationSnippetLoads(testInstance *testing.T) {
	snippet := readReadmeConfigurationSnippet(testInstance)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippet), &document))
	for _, section := range []string{"common", "jira", "branch"} {
		require.Contains(testInstance, document, section)
	}

	snippetPath := filepath.Join(testInstance.TempDir(), readmeSnippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(snippetPath, []byte(snippet), 0o600))

	loader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName: "config",
		ConfigurationType: "yaml",
		EnvironmentPrefix: "BRANCHODOCS",
	})
	loader.SetEmbeddedConfiguration(cli.EmbeddedDefaultConfiguration())

	var configuration cli.ApplicationConfiguration
	_, loadError := loader.LoadConfiguration(snippetPath, nil, &configuration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, "https://example.atlassian.net", configuration.Jira.BaseURL)
	require.Equal(testInstance, []string{"customfield_10008", "parent"}, configuration.Jira.ParentFields)
	require.Equal(testInstance, 15*time.Second, configuration.Jira.Timeout)
	require.Equal(testInstance, "current", configuration.Branch.PrefixVariant)
	require.Equal(testInstance, "feature", configuration.Branch.Categories["story"])
	require.Equal(testInstance, "bugfix", configuration.Branch.Categories["bug"])
	require.Equal(testInstance, "master", configuration.Branch.Prefixes["sub-task"])
}
