package pipeline

import (
	"errors"
	"fmt"
)

// ErrUnsupportedDocType is wrapped by the dispatch StageError.
var ErrUnsupportedDocType = errors.New("unsupported document type")

// StageError is a fatal ParseDocument failure tagged with the stage it
// happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("parseDocument: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
