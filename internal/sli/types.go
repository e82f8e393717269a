package sli

// Definition represents a parsed signal definition
type Definition struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata contains signal metadata
type Metadata struct {
	Name        string `yaml:"name"`
	Owner       string `yaml:"owner,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Spec contains the signal specification
type Spec struct {
	SLOTargetPercent float64  `yaml:"sloTargetPercent"`
	Total            Selector `yaml:"total"`
	Success          Selector `yaml:"success"`
}

// Selector identifies a counter series in the metrics backend
type Selector struct {
	Metric string            `yaml:"metric"`
	Group  string            `yaml:"group"`
	System string            `yaml:"system"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// DefinitionWithFile pairs a definition with its source file path
type DefinitionWithFile struct {
	Definition *Definition
	File       string
}

// ValidationError represents a validation error for a specific file
type ValidationError struct {
	File    string
	Path    string
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}
