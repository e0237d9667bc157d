package blocks

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidGeometry indicates the loaded layers produce a degenerate
	// working extent (non-positive width or height).
	ErrInvalidGeometry = eris.New("blocks: invalid geometry bounds")
	// ErrInvalidParameter indicates a rejected design parameter. It is always
	// raised before any rendering side effect.
	ErrInvalidParameter = eris.New("blocks: invalid parameter")
	// ErrOutputWrite matches any WriteError via errors.Is.
	ErrOutputWrite = eris.New("blocks: output write failed")
)

// WriteError reports a failure to write a rendered design to disk, carrying
// the destination path and the underlying cause.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write design %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrOutputWrite }
