package tagger

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors. ErrDisabled and ErrNoCredential are no-op signals,
// not failures: they mean auto-tagging is switched off and are never
// retried.
var (
	ErrDisabled     = goerr.New("auto tagging is disabled")
	ErrNoCredential = goerr.New("tagging API credential is not configured")
	ErrNoValidTags  = goerr.New("no valid tags in response")
)
