package distribution

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// PromptCommitScope selects whether copied prompt files are committed and which paths the commit stages.
type PromptCommitScope string

const (
	// PromptCommitScopeNone never commits copied prompt files.
	PromptCommitScopeNone PromptCommitScope = "none"
	// PromptCommitScopeWorkingTree commits copied prompt files by staging the whole working tree.
	PromptCommitScopeWorkingTree PromptCommitScope = "working-tree"
)

const unknownPromptCommitScopeTemplateConstant = "%w: %q (expected %s or %s)"

// ErrUnknownPromptCommitScope indicates an unsupported prompt commit scope value.
var ErrUnknownPromptCommitScope = errors.New("unknown prompt commit scope")

// ParsePromptCommitScope converts user input into a PromptCommitScope. Blank input selects PromptCommitScopeNone.
func ParsePromptCommitScope(rawValue string) (PromptCommitScope, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	switch PromptCommitScope(normalizedValue) {
	case "", PromptCommitScopeNone:
		return PromptCommitScopeNone, nil
	case PromptCommitScopeWorkingTree:
		return PromptCommitScopeWorkingTree, nil
	default:
		return "", fmt.Errorf(unknownPromptCommitScopeTemplateConstant, ErrUnknownPromptCommitScope, rawValue, PromptCommitScopeNone, PromptCommitScopeWorkingTree)
	}
}

// PromptCommitScopeDecodeHook decodes configuration strings into PromptCommitScope values.
func PromptCommitScopeDecodeHook() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String || targetType != reflect.TypeOf(PromptCommitScopeNone) {
			return data, nil
		}
		return ParsePromptCommitScope(reflect.ValueOf(data).String())
	}
}

// CopyOptions configures DistributeCopies.
type CopyOptions struct {
	SyncGuidelines            bool
	GuidelinesChangeDetection bool
	PromptCommitScope         PromptCommitScope
}

// DefaultCopyOptions replaces the guidelines directory on every run and never commits copied prompts.
func DefaultCopyOptions() CopyOptions {
	return CopyOptions{
		SyncGuidelines:            true,
		GuidelinesChangeDetection: false,
		PromptCommitScope:         PromptCommitScopeNone,
	}
}
