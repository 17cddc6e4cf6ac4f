// Provides the status taxonomy shared by the cursor, the loader and the store.
package dbstatic_errors

import "errors"

var (
	// not found family: the cursor axis involved is left unbound
	ErrRecordTypeNotFound = errors.New("dbstatic: record type not found")
	ErrRecNotFound        = errors.New("dbstatic: record not found")
	ErrFlddesNotFound     = errors.New("dbstatic: field description not found")
	ErrFieldNotFound      = errors.New("dbstatic: field not found")
	ErrMenuNotFound       = errors.New("dbstatic: menu not found")

	// validation family
	ErrBadField   = errors.New("dbstatic: bad field value")
	ErrBadLink    = errors.New("dbstatic: bad link")
	ErrNameLength = errors.New("dbstatic: record name too long")
	ErrRecExists  = errors.New("dbstatic: record already exists")
	ErrStrLen     = errors.New("dbstatic: string too long")

	// schema construction
	ErrDuplicate     = errors.New("dbstatic: duplicate definition")
	ErrNoNameField   = errors.New("dbstatic: first field must be NAME")
	ErrBadDefinition = errors.New("dbstatic: bad definition")

	// logic family: structures would be left inconsistent
	ErrInternal = errors.New("dbstatic: internal inconsistency")

	// store
	ErrClosed     = errors.New("dbstatic: store is closed")
	ErrNoSnapshot = errors.New("dbstatic: no snapshot saved")
)
