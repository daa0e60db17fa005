package services

import (
	"errors"
	"fmt"
)

var ErrNoChoices = errors.New("upstream returned no completion choices")

// UpstreamError is a non-success answer from the completion provider.
// Status is zero when the provider gave no usable HTTP status.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}
