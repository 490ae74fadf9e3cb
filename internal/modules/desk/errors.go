package desk

import "errors"

var (
	ErrValidation    = errors.New("invalid desk number")
	ErrAlreadyExists = errors.New("desk already exists")
	ErrNotFound      = errors.New("hotdesk not found")
	ErrDeskInUse     = errors.New("the hotdesk cannot be updated while it is reserved")
)
