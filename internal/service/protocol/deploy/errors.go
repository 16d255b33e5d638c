package deploy

import (
	"errors"
	"fmt"

	"github.com/boldagechris/clinical-protocol-fhir-app/internal/service/protocol/validate"
)

// ErrAlreadyDeployed is returned by Deploy once the gate is in StateDeployed.
var ErrAlreadyDeployed = errors.New("bundle already deployed in this session")

// DeploymentBlockedError means the last validation report marked the bundle
// invalid. Nothing was published.
type DeploymentBlockedError struct {
	Errors int
	Issues []validate.Issue
}

func (e *DeploymentBlockedError) Error() string {
	return fmt.Sprintf("Cannot deploy invalid FHIR resources (%d validation errors). Please fix validation errors first.", e.Errors)
}

// DeploymentTransportError means the publish call itself failed.
type DeploymentTransportError struct {
	Target string
	Cause  error
}

func (e *DeploymentTransportError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("publish bundle: %v", e.Cause)
	}
	return fmt.Sprintf("publish bundle to %s: %v", e.Target, e.Cause)
}

func (e *DeploymentTransportError) Unwrap() error {
	return e.Cause
}
