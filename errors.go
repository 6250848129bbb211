package quickbase

import (
	"errors"

	"github.com/BrobridgeOrg/go-quickbase/api"
	"github.com/BrobridgeOrg/go-quickbase/client"
	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// Common errors for go-quickbase operations.
var (
	// Schema and record errors
	ErrUnknownField   = orm.ErrUnknownField
	ErrUnknownFieldID = orm.ErrUnknownFieldID
	ErrUnknownReport  = orm.ErrUnknownReport
	ErrInvalidSchema  = orm.ErrInvalidSchema
	ErrInvalidValue   = orm.ErrInvalidValue
	ErrTableMismatch  = orm.ErrTableMismatch

	// Transport errors
	ErrTransport          = api.ErrTransport
	ErrMalformedResponse  = api.ErrMalformedResponse
	ErrMissingCredentials = api.ErrMissingCredentials

	// Query errors
	ErrPagerInUse  = client.ErrPagerInUse
	ErrEmptyFilter = client.ErrEmptyFilter

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

type (
	// UnknownFieldError reports an attribute name missing from a schema.
	UnknownFieldError = orm.UnknownFieldError
	// UnknownFieldIDError reports a field id missing from a schema.
	UnknownFieldIDError = orm.UnknownFieldIDError
	// InvalidValueError reports a value that does not fit its field type.
	InvalidValueError = orm.InvalidValueError
	// TransportError reports a failed or rejected API request.
	TransportError = api.TransportError
)

// IsNotFound reports whether err is a transport error with status 404.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == 404
}
