package validate

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// TerminologyFile lists extra code systems the validator should recognise.
//
//	codeSystems:
//	  - http://example.org/medication-codes
type TerminologyFile struct {
	CodeSystems []string `yaml:"codeSystems"`
}

// LoadCodeSystems reads a terminology file. An empty path yields no systems.
func LoadCodeSystems(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terminology file: %w", err)
	}
	var tf TerminologyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse terminology file %s: %w", path, err)
	}
	return tf.CodeSystems, nil
}
