package sli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFromDirectory reads every *.yaml / *.yml file in dirPath into a signal
// definition. Files that fail to parse are reported and skipped; the rest
// still load. Directory order (lexical, per os.ReadDir) fixes the evaluation
// order for the life of the process.
func LoadFromDirectory(dirPath string) ([]DefinitionWithFile, []ValidationError) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, []ValidationError{{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		}}
	}

	var defs []DefinitionWithFile
	var errors []ValidationError

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		file := filepath.Join(dirPath, entry.Name())
		data, err := os.ReadFile(file)
		if err != nil {
			errors = append(errors, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to read file: %v", err),
			})
			continue
		}

		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			errors = append(errors, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}

		defs = append(defs, DefinitionWithFile{
			Definition: &def,
			File:       file,
		})
	}

	return defs, errors
}
