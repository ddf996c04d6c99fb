package models

import (
	"fmt"

	derr "github.com/avialine/crew-recovery/internal/domain/errors"
)

func newInvalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", derr.ErrInvalidInput, fmt.Sprintf(format, args...))
}
