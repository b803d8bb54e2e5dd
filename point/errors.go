package point

import "errors"

// ErrInvalidInterval is returned when constructing an interval whose end
// does not come strictly after its start.
var ErrInvalidInterval = errors.New("invalid interval: end must be after start")
