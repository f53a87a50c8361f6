package errs

import (
	"errors"
	"fmt"

	"github.com/Anmepod44/website/internal/domain/consts"
)

var (
	// ErrBucketNameTaken is returned when the generated bucket name already exists at the provider.
	ErrBucketNameTaken  = errors.New("bucket name is already taken")
	ErrDeploymentFailed = errors.New("deployment failed")
)

type StageError struct {
	Stage consts.Stage
	Err   error
}

func (t *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", t.Stage, t.Err)
}

func (t *StageError) Unwrap() error {
	return t.Err
}

type ValidationError struct {
	Field  string
	Reason string
}

func (t ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", t.Field, t.Reason)
}
