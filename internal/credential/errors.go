package credential

import "errors"

var (
	// ErrBootstrapFailed means the initial token fetch for an app failed and
	// nothing was stored.
	ErrBootstrapFailed = errors.New("credential bootstrap failed")

	// ErrRefreshFailed means the refresh exchange failed. The previous bundle
	// is kept but must not be used for this request.
	ErrRefreshFailed = errors.New("credential refresh failed")
)
