package model

import "errors"

// ErrNotFound means no row matched a lookup or an update by id.
var ErrNotFound = errors.New("record not found")
