// Package repository holds the sentinel errors and conformance tests
// shared by every repository backend.
package repository

import "github.com/m-mizutani/goerr/v2"

var (
	ErrMemeNotFound       = goerr.New("meme not found")
	ErrCollectionNotFound = goerr.New("collection not found")
)
