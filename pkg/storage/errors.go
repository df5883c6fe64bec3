package storage

import "errors"

var (
	ErrNoData = errors.New("no data accumulated")
)
