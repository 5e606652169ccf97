package model

import "errors"

// ErrInconsistent reports a violated timeline invariant. It never fires
// under correct usage of the package.
var ErrInconsistent = errors.New("model: inconsistent schedule")
