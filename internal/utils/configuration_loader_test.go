package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewtools/sentiflow/internal/utils"
)

const (
	testConfigurationNameConstant       = "sentiflow"
	testConfigurationTypeConstant       = "yaml"
	testEnvironmentPrefixConstant       = "SENTIFLOWTEST"
	testConfigurationFileNameConstant   = "sentiflow.yaml"
	testConfigurationContentConstant    = "common:\n  log_level: debug\npipeline:\n  workbook_path: reviews.xlsx\n  branch: main\n"
	testMalformedConfigurationConstant  = "common: [unbalanced\n"
	testDefaultLogLevelKeyConstant      = "common.log_level"
	testDefaultLogLevelValueConstant    = "info"
	testEnvironmentLogLevelKeyConstant  = "SENTIFLOWTEST_COMMON_LOG_LEVEL"
	testEnvironmentLogLevelValConstant  = "warn"
	testExpectedWorkbookPathConstant    = "reviews.xlsx"
	testExpectedBranchConstant          = "main"
	testExpectedDebugLogLevelConstant   = "debug"
	testExpectedDefaultLogLevelConstant = "info"
	testEmbeddedConfigurationConstant   = "common:\n  log_level: info\npipeline:\n  workbook_path: embedded.xlsx\n  branch: main\n"
	testEmbeddedWorkbookPathConstant    = "embedded.xlsx"
)

type testConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
	Pipeline struct {
		WorkbookPath string `mapstructure:"workbook_path"`
		Branch       string `mapstructure:"branch"`
	} `mapstructure:"pipeline"`
}

func TestConfigurationLoaderReadsFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{temporaryDirectory})

	var configuration testConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, testExpectedDebugLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, testExpectedWorkbookPathConstant, configuration.Pipeline.WorkbookPath)
	require.Equal(testInstance, testExpectedBranchConstant, configuration.Pipeline.Branch)
}

func TestConfigurationLoaderAppliesDefaultsWithoutFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{temporaryDirectory})

	defaultValues := map[string]any{testDefaultLogLevelKeyConstant: testDefaultLogLevelValueConstant}

	var configuration testConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration("", defaultValues, &configuration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, testExpectedDefaultLogLevelConstant, configuration.Common.LogLevel)
}

func TestConfigurationLoaderHonorsEnvironmentOverride(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()

	testInstance.Setenv(testEnvironmentLogLevelKeyConstant, testEnvironmentLogLevelValConstant)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{temporaryDirectory})

	defaultValues := map[string]any{testDefaultLogLevelKeyConstant: testDefaultLogLevelValueConstant}

	var configuration testConfiguration
	_, loadError := loader.LoadConfiguration("", defaultValues, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testEnvironmentLogLevelValConstant, configuration.Common.LogLevel)
}

func TestConfigurationLoaderReportsMalformedFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testMalformedConfigurationConstant), 0o600))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{temporaryDirectory})

	var configuration testConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderMergesEmbeddedConfiguration(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{temporaryDirectory})
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	var configuration testConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, testExpectedDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, testEmbeddedWorkbookPathConstant, configuration.Pipeline.WorkbookPath)
}

func TestConfigurationLoaderFileOverridesEmbeddedConfiguration(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{temporaryDirectory})
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	var configuration testConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testExpectedDebugLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, testExpectedWorkbookPathConstant, configuration.Pipeline.WorkbookPath)
	require.Equal(testInstance, testExpectedBranchConstant, configuration.Pipeline.Branch)
}
