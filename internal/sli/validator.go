package sli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Validator handles signal definition validation
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new validator with the given schema file
func NewValidator(schemaPath string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// LoadAndValidate loads every signal definition in a directory and validates
// the lot in one pass, so callers get the definitions and the verdict on them
// from the same read.
func (v *Validator) LoadAndValidate(dirPath string) ([]DefinitionWithFile, []ValidationError) {
	defsWithFiles, allErrors := LoadFromDirectory(dirPath)

	if len(defsWithFiles) == 0 {
		return nil, allErrors
	}

	for _, defWithFile := range defsWithFiles {
		schemaErrors := v.validateSchema(defWithFile.File, defWithFile.Definition)
		allErrors = append(allErrors, schemaErrors...)
	}

	allErrors = append(allErrors, validateExtraRules(defsWithFiles)...)

	return defsWithFiles, allErrors
}

// ValidateDirectory validates all signal definition files in a directory
func (v *Validator) ValidateDirectory(dirPath string) []ValidationError {
	_, errors := v.LoadAndValidate(dirPath)
	return errors
}

// validateSchema validates a single definition against the JSON schema
func (v *Validator) validateSchema(file string, def *Definition) []ValidationError {
	var errors []ValidationError

	// Round-trip through YAML to get a generic document for schema validation
	yamlBytes, err := yaml.Marshal(def)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to marshal definition: %v", err),
		})
		return errors
	}

	var jsonData interface{}
	if err := yaml.Unmarshal(yamlBytes, &jsonData); err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to convert to JSON: %v", err),
		})
		return errors
	}

	if err := v.schema.Validate(jsonData); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errors = append(errors, extractSchemaErrors(file, validationErr)...)
		} else {
			errors = append(errors, ValidationError{
				File:    file,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// extractSchemaErrors converts JSON schema validation errors to ValidationErrors
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	errors = append(errors, ValidationError{
		File:    file,
		Path:    path,
		Message: err.Error(),
	})

	for _, cause := range err.Causes {
		errors = append(errors, extractSchemaErrors(file, cause)...)
	}

	return errors
}

// validateExtraRules applies additional validation rules beyond JSON schema
func validateExtraRules(defsWithFiles []DefinitionWithFile) []ValidationError {
	var errors []ValidationError

	nameSeen := make(map[string]string)
	for _, defWithFile := range defsWithFiles {
		def := defWithFile.Definition
		name := def.Metadata.Name
		if prevFile, exists := nameSeen[name]; exists {
			errors = append(errors, ValidationError{
				File:    defWithFile.File,
				Path:    "metadata.name",
				Message: fmt.Sprintf("duplicate name %q (also in %s)", name, filepath.Base(prevFile)),
			})
		} else {
			nameSeen[name] = defWithFile.File
		}

		if def.Spec.SLOTargetPercent < 0 || def.Spec.SLOTargetPercent > 100 {
			errors = append(errors, ValidationError{
				File:    defWithFile.File,
				Path:    "spec.sloTargetPercent",
				Message: fmt.Sprintf("sloTargetPercent must be within [0,100], got %v", def.Spec.SLOTargetPercent),
			})
		}

		errors = append(errors, validateSelector(defWithFile.File, "spec.total", def.Spec.Total)...)
		errors = append(errors, validateSelector(defWithFile.File, "spec.success", def.Spec.Success)...)
	}

	return errors
}

// validateSelector checks that a selector names a metric and that its extra
// label names are legal PromQL label names. Label names cannot be escaped in
// a matcher, so a bad name is a hard rejection.
func validateSelector(file, path string, sel Selector) []ValidationError {
	var errors []ValidationError

	if sel.Metric == "" {
		errors = append(errors, ValidationError{
			File:    file,
			Path:    path + ".metric",
			Message: "metric name is required",
		})
	}

	for name := range sel.Labels {
		if !labelNamePattern.MatchString(name) {
			errors = append(errors, ValidationError{
				File:    file,
				Path:    path + ".labels",
				Message: fmt.Sprintf("invalid label name %q", name),
			})
		}
	}

	return errors
}
