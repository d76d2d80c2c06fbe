package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant     = "failed to load workflow configuration: %w"
	configurationParseErrorTemplateConstant    = "failed to parse workflow configuration: %w"
	configurationPathRequiredMessageConstant   = "workflow configuration path must be provided"
	configurationEmptyStepsMessageConstant     = "workflow configuration must define at least one step"
	configurationActionMissingTemplateConstant = "workflow step %d missing action name"
)

var (
	// ErrConfigurationPathRequired indicates LoadConfiguration received a blank path.
	ErrConfigurationPathRequired = errors.New(configurationPathRequiredMessageConstant)
	// ErrEmptyConfiguration indicates a script without steps.
	ErrEmptyConfiguration = errors.New(configurationEmptyStepsMessageConstant)
)

// Configuration describes the ordered steps of a script.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration names one action and its declarative options.
type StepConfiguration struct {
	Action  string         `yaml:"action" json:"action"`
	Options map[string]any `yaml:"with" json:"with"`
}

type wrappedConfiguration struct {
	Workflow Configuration `yaml:"workflow"`
}

// LoadConfiguration reads a script from disk and performs basic validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, ErrConfigurationPathRequired
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes a script. Steps may sit at the top level or
// under a "workflow" key.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := decodeStrict(contentBytes, &configuration); unmarshalError != nil {
		var wrapper wrappedConfiguration
		if nestedError := decodeStrict(contentBytes, &wrapper); nestedError != nil {
			return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
		}
		configuration = wrapper.Workflow
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, ErrEmptyConfiguration
	}

	for stepIndex := range configuration.Steps {
		trimmedAction := strings.TrimSpace(configuration.Steps[stepIndex].Action)
		if len(trimmedAction) == 0 {
			return Configuration{}, fmt.Errorf(configurationActionMissingTemplateConstant, stepIndex+1)
		}
		configuration.Steps[stepIndex].Action = trimmedAction
	}

	return configuration, nil
}

func decodeStrict(contentBytes []byte, target any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(contentBytes))
	decoder.KnownFields(true)
	if decodeError := decoder.Decode(target); decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return decodeError
	}
	return nil
}
