package station

import (
	"errors"

	"github.com/secretyv/ASur/pkg/literal"
)

// DataFormatError reports a malformed row of one of the point tables. It
// names the file and the offending line.
type DataFormatError = literal.DataFormatError

var (
	// ErrUnknownPoint is returned when a query names a point absent from
	// the registry.
	ErrUnknownPoint = errors.New("unknown overflow point")

	// ErrUnknownTideCycle is returned when a query names a tide cycle
	// absent from the point's data.
	ErrUnknownTideCycle = errors.New("unknown tide cycle")
)
