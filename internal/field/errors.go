package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrStaleActivation is returned by Activate when the field was dismissed,
	// selected or re-activated while options were being resolved.
	ErrStaleActivation = errors.New("activation superseded")
	ErrNotOpen         = errors.New("field menu is not open")
	ErrUnknownOption   = errors.New("value is not in the menu")

	errNullState = errors.New("sheet dropdown state is null")
)

func isNullState(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// UnattachedFieldError means a field was used before being added to a block.
type UnattachedFieldError struct {
	Field string
}

func (e *UnattachedFieldError) Error() string {
	if e.Field == "" {
		return "field is not attached to a block"
	}
	return fmt.Sprintf("field %q is not attached to a block", e.Field)
}
