package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testVersionConstant           = "v2.0.0"
	testVersionOutputConstant     = "promptsync version: v2.0.0\n"
	testInvalidConfigConstant     = "common: [unterminated\n"
	testInvalidConfigFileConstant = "broken.yaml"
)

func TestApplicationVersionFlagPrintsVersionAndExits(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments func(testInstance *testing.T) []string
	}{
		{
			name: "version_only",
			arguments: func(*testing.T) []string {
				return []string{"promptsync", "--version"}
			},
		},
		{
			name: "version_skips_configuration_loading",
			arguments: func(testInstance *testing.T) []string {
				configurationPath := filepath.Join(testInstance.TempDir(), testInvalidConfigFileConstant)
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testInvalidConfigConstant), 0o600))
				return []string{"promptsync", "--config", configurationPath, "--version"}
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			application := NewApplication()
			application.versionResolver = func(context.Context) string {
				return testVersionConstant
			}
			exitCodes := []int{}
			application.exitFunction = func(code int) {
				exitCodes = append(exitCodes, code)
			}

			outputBuffer := &bytes.Buffer{}
			application.rootCommand.SetOut(outputBuffer)

			originalArguments := os.Args
			subtest.Cleanup(func() {
				os.Args = originalArguments
			})
			os.Args = testCase.arguments(subtest)

			require.NoError(subtest, application.Execute())
			require.Equal(subtest, testVersionOutputConstant, outputBuffer.String())
			require.Equal(subtest, []int{0}, exitCodes)
		})
	}
}

func TestNormalizeVersion(testInstance *testing.T) {
	testCases := []struct {
		name            string
		rawVersion      string
		expectedVersion string
	}{
		{name: "empty", rawVersion: "", expectedVersion: "dev"},
		{name: "development_build", rawVersion: "(devel)", expectedVersion: "dev"},
		{name: "prefixed", rawVersion: "v1.2.3", expectedVersion: "v1.2.3"},
		{name: "unprefixed", rawVersion: "1.4", expectedVersion: "v1.4.0"},
		{name: "prerelease", rawVersion: "v0.3.0-rc.1", expectedVersion: "v0.3.0-rc.1"},
		{name: "not_semantic", rawVersion: "nightly", expectedVersion: "nightly"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedVersion, normalizeVersion(testCase.rawVersion))
		})
	}
}
