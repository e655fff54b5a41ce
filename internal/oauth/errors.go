package oauth

import "errors"

var (
	// ErrConfig marks builder and configuration problems. Concrete causes are
	// wrapped with fmt.Errorf("%w: ...", ErrConfig).
	ErrConfig = errors.New("oauth: invalid configuration")

	// ErrStateMismatch is reported when a callback state is unknown or expired.
	ErrStateMismatch = errors.New("state mismatch or expired")

	// ErrEmptyUUID is reported when an adapter returns an identity without uuid.
	ErrEmptyUUID = errors.New("oauth: empty user uuid")
)
