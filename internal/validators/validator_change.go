package validators

import (
	"context"
	"fmt"

	"github.com/mlevkov/lockstep/models"
)

// Field name constants used to specify which fields should be validated.
// They are passed to Validate to restrict validation to a subset of fields.
const (
	// FieldID targets the client-generated identifier of a change.
	FieldID = "id"

	// FieldType targets the logical table name of a change.
	FieldType = "type"

	// FieldOperation targets the change operation tag.
	FieldOperation = "operation"

	// FieldData targets the serialized entity payload of an upsert.
	FieldData = "data"

	// FieldChanges targets the list of changes in a push batch.
	FieldChanges = "changes"

	// FieldClientID targets the installation identifier of a push batch.
	FieldClientID = "client_id"
)

// allowedOperations is the exhaustive set of ChangeOperation values accepted
// by the validator.
var allowedOperations = []models.ChangeOperation{
	models.OpUpsert,
	models.OpDelete,
}

// ChangeValidator implements the Validator interface for the synchronization
// wire models: Change and PushRequest. It supports both value and pointer
// receivers and optional field-level scoping via variadic field names.
type ChangeValidator struct {
}

// NewChangeValidator constructs a new ChangeValidator and returns it as the
// Validator interface.
func NewChangeValidator() Validator {
	return &ChangeValidator{}
}

// Validate dispatches validation to the appropriate type-specific method.
func (v *ChangeValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Change:
		return v.validateChange(ctx, value, fields...)
	case *models.Change:
		return v.validateChange(ctx, *value, fields...)

	case models.PushRequest:
		return v.validatePushRequest(ctx, value, fields...)
	case *models.PushRequest:
		return v.validatePushRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func isValidOperation(op models.ChangeOperation) bool {
	for _, o := range allowedOperations {
		if op == o {
			return true
		}
	}
	return false
}

func (v *ChangeValidator) validateChange(ctx context.Context, change models.Change, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldType, FieldOperation, FieldData}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if change.ID == "" {
				return ErrEmptyID
			}
		case FieldType:
			if change.Type == "" {
				return ErrEmptyType
			}
		case FieldOperation:
			if !isValidOperation(change.Operation) {
				return ErrInvalidOperation
			}
		case FieldData:
			if change.Operation == models.OpUpsert && len(change.Data) == 0 {
				return ErrEmptyData
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *ChangeValidator) validatePushRequest(ctx context.Context, request models.PushRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldClientID, FieldChanges}
	}

	for _, f := range fields {
		switch f {
		case FieldClientID:
			if request.ClientID == "" {
				return ErrEmptyClientID
			}
		case FieldChanges:
			if len(request.Changes) == 0 {
				return ErrEmptyBatch
			}
			for i, change := range request.Changes {
				if err := v.validateChange(ctx, change); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
