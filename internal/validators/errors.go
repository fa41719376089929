package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyID          = errors.New("change id is required")
	ErrEmptyType        = errors.New("change type is required")
	ErrInvalidOperation = errors.New("invalid change operation")
	ErrEmptyData        = errors.New("data is required for an upsert")
	ErrEmptyBatch       = errors.New("change batch cannot be empty")
	ErrEmptyClientID    = errors.New("client id is required")
)
