package cloud

import "github.com/m-mizutani/goerr/v2"

var (
	ErrDisabled           = goerr.New("cloud storage is disabled")
	ErrRestoreUnsupported = goerr.New("backend does not support listing, restore unavailable")
)
