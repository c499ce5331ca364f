package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

const (
	testHomeDirectoryConstant            = "/home/operator"
	testRelativeProjectPathConstant      = "Projects/example"
	testWhitespacePrefixConstant         = "  "
	testWhitespaceSuffixConstant         = "\t"
	testOtherUserPathConstant            = "~someone/project"
	testAbsoluteProjectPathConstant      = "/srv/projects/example"
	testHomeLookupFailureMessageConstant = "home lookup failed"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "bare_tilde", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_with_slash", input: "~/" + testRelativeProjectPathConstant, expectedPath: filepath.Join(testHomeDirectoryConstant, testRelativeProjectPathConstant)},
		{name: "other_user_unchanged", input: testOtherUserPathConstant, expectedPath: testOtherUserPathConstant},
		{name: "absolute_unchanged", input: testAbsoluteProjectPathConstant, expectedPath: testAbsoluteProjectPathConstant},
		{name: "empty_unchanged", input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderKeepsInputWhenLookupFails(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New(testHomeLookupFailureMessageConstant)
	})

	require.Equal(testInstance, "~/"+testRelativeProjectPathConstant, expander.Expand("~/"+testRelativeProjectPathConstant))
}

func TestTargetPathSanitizerSanitize(testInstance *testing.T) {
	sanitizer := pathutils.NewTargetPathSanitizer(pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	}))

	sanitized := sanitizer.Sanitize([]string{
		"",
		testWhitespacePrefixConstant + "~/" + testRelativeProjectPathConstant + testWhitespaceSuffixConstant,
		"   ",
		testAbsoluteProjectPathConstant + "/",
	})

	require.Equal(testInstance, []string{
		filepath.Join(testHomeDirectoryConstant, testRelativeProjectPathConstant),
		filepath.Clean(testAbsoluteProjectPathConstant),
	}, sanitized)
}

func TestTargetPathSanitizerReturnsNilForBlankInput(testInstance *testing.T) {
	sanitizer := pathutils.NewTargetPathSanitizer(nil)

	require.Nil(testInstance, sanitizer.Sanitize([]string{"   ", "\n"}))
	require.Empty(testInstance, sanitizer.SanitizePath(" \t"))
}
