package follow

import "errors"

var (
	// ErrNilBody indicates a controller was created without a body.
	ErrNilBody = errors.New("follow: controller requires a body")

	// ErrNilTarget indicates a controller was created without a target source.
	ErrNilTarget = errors.New("follow: controller requires a target source")
)
