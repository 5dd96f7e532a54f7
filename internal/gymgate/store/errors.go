package store

import "errors"

var (
	ErrDeviceNotFound   = errors.New("device not found")
	ErrCommandNotFound  = errors.New("command not found")
	ErrSyncItemNotFound = errors.New("sync item not found")
)
