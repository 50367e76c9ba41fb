package driver

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrTableNotFound is returned by Insert when the target table was never
// created. Reads treat a missing table as an empty collection instead.
var ErrTableNotFound = errors.New("table not found")

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrTableNotFound)
}
