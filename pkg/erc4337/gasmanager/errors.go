package gasmanager

import "errors"

var ErrMissingClient = errors.New("paymaster client is required")
