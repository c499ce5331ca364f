package targets

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

const (
	schemaResourceNameConstant            = "targets.schema.json"
	schemaDecodeErrorTemplateConstant     = "unable to decode targets schema: %w"
	schemaResourceErrorTemplateConstant   = "unable to register targets schema: %w"
	schemaCompileErrorTemplateConstant    = "unable to compile targets schema: %w"
	documentParseErrorTemplateConstant    = "unable to parse targets document: %w"
	documentConvertErrorTemplateConstant  = "unable to convert targets document: %w"
	unexpectedValidationTemplateConstant  = "unexpected targets validation failure: %w"
	validationErrorPrefixTemplateConstant = "targets document is invalid: %s"
	validationIssueSeparatorConstant      = "; "
	instanceLocationSeparatorConstant     = "/"
	documentRootLocationConstant          = "(root)"
)

//go:embed schema/targets.schema.json
var targetsSchemaDocument []byte

var (
	compiledTargetsSchema     *jsonschema.Schema
	targetsSchemaCompileError error
	targetsSchemaCompileGuard sync.Once
	validationMessagePrinter = message.NewPrinter(language.English)
)

// ValidationIssue describes a single schema violation.
type ValidationIssue struct {
	Location string
	Keyword  string
	Message  string
}

// ValidationError reports every schema violation found in a targets document.
type ValidationError struct {
	Issues []ValidationIssue
}

// Error summarizes the violations on one line.
func (validationError *ValidationError) Error() string {
	formattedIssues := make([]string, 0, len(validationError.Issues))
	for _, issue := range validationError.Issues {
		formattedIssues = append(formattedIssues, fmt.Sprintf("%s: %s", issue.Location, issue.Message))
	}
	return fmt.Sprintf(validationErrorPrefixTemplateConstant, strings.Join(formattedIssues, validationIssueSeparatorConstant))
}

func targetsSchema() (*jsonschema.Schema, error) {
	targetsSchemaCompileGuard.Do(func() {
		schemaDocument, decodeError := jsonschema.UnmarshalJSON(bytes.NewReader(targetsSchemaDocument))
		if decodeError != nil {
			targetsSchemaCompileError = fmt.Errorf(schemaDecodeErrorTemplateConstant, decodeError)
			return
		}

		compiler := jsonschema.NewCompiler()
		if resourceError := compiler.AddResource(schemaResourceNameConstant, schemaDocument); resourceError != nil {
			targetsSchemaCompileError = fmt.Errorf(schemaResourceErrorTemplateConstant, resourceError)
			return
		}

		schema, compileError := compiler.Compile(schemaResourceNameConstant)
		if compileError != nil {
			targetsSchemaCompileError = fmt.Errorf(schemaCompileErrorTemplateConstant, compileError)
			return
		}
		compiledTargetsSchema = schema
	})
	return compiledTargetsSchema, targetsSchemaCompileError
}

// ValidateDocument checks raw JSON or YAML content against the embedded targets schema.
// Schema violations are reported as *ValidationError.
func ValidateDocument(documentContent []byte) error {
	schema, schemaError := targetsSchema()
	if schemaError != nil {
		return schemaError
	}

	var parsedDocument any
	if parseError := yaml.Unmarshal(documentContent, &parsedDocument); parseError != nil {
		return fmt.Errorf(documentParseErrorTemplateConstant, parseError)
	}

	jsonContent, marshalError := json.Marshal(normalizeDocumentValue(parsedDocument))
	if marshalError != nil {
		return fmt.Errorf(documentConvertErrorTemplateConstant, marshalError)
	}

	instance, instanceError := jsonschema.UnmarshalJSON(bytes.NewReader(jsonContent))
	if instanceError != nil {
		return fmt.Errorf(documentConvertErrorTemplateConstant, instanceError)
	}

	validationFailure := schema.Validate(instance)
	if validationFailure == nil {
		return nil
	}

	var schemaViolation *jsonschema.ValidationError
	if !errors.As(validationFailure, &schemaViolation) {
		return fmt.Errorf(unexpectedValidationTemplateConstant, validationFailure)
	}

	issues := make([]ValidationIssue, 0)
	collectValidationIssues(schemaViolation, &issues)
	if len(issues) == 0 {
		issues = append(issues, ValidationIssue{Location: documentRootLocationConstant, Message: schemaViolation.Error()})
	}
	return &ValidationError{Issues: issues}
}

func collectValidationIssues(schemaViolation *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(schemaViolation.Causes) > 0 {
		for _, cause := range schemaViolation.Causes {
			collectValidationIssues(cause, issues)
		}
		return
	}
	if schemaViolation.ErrorKind == nil {
		return
	}

	keyword := ""
	keywordPath := schemaViolation.ErrorKind.KeywordPath()
	if len(keywordPath) > 0 {
		keyword = keywordPath[len(keywordPath)-1]
	}

	location := documentRootLocationConstant
	if len(schemaViolation.InstanceLocation) > 0 {
		location = instanceLocationSeparatorConstant + strings.Join(schemaViolation.InstanceLocation, instanceLocationSeparatorConstant)
	}

	*issues = append(*issues, ValidationIssue{
		Location: location,
		Keyword:  keyword,
		Message:  schemaViolation.ErrorKind.LocalizedString(validationMessagePrinter),
	})
}

func normalizeDocumentValue(value any) any {
	switch typedValue := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(typedValue))
		for key, nestedValue := range typedValue {
			normalized[key] = normalizeDocumentValue(nestedValue)
		}
		return normalized
	case map[any]any:
		normalized := make(map[string]any, len(typedValue))
		for key, nestedValue := range typedValue {
			normalized[fmt.Sprint(key)] = normalizeDocumentValue(nestedValue)
		}
		return normalized
	case []any:
		normalized := make([]any, len(typedValue))
		for index, nestedValue := range typedValue {
			normalized[index] = normalizeDocumentValue(nestedValue)
		}
		return normalized
	default:
		return typedValue
	}
}
