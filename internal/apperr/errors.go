package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNotDirectory = errors.New("not a directory")
	ErrPathEscape   = errors.New("path escapes root")
)
