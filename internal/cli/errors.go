package cli

import (
	"errors"
	"io/fs"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Store errors
	ErrStoreNotFound  = "STORE_NOT_FOUND"
	ErrStoreExists    = "STORE_EXISTS"
	ErrStoreInvalid   = "STORE_INVALID"
	ErrValidation     = "VALIDATION_FAILED"
	ErrDuplicateLabel = "DUPLICATE_LABEL"
	ErrItemNotFound   = "ITEM_NOT_FOUND"

	// Board errors
	ErrBoardUnavailable = "BOARD_UNAVAILABLE"
	ErrSyncPartial      = "SYNC_PARTIAL_FAILURE"

	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// History errors
	ErrHistory = "HISTORY_ERROR"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues, in addition to the sync warnings.
const (
	WarnHistoryFailed = "HISTORY_FAILED"
	WarnNewSkipped    = "NEW_ITEMS_SKIPPED"
	WarnLogUnwritable = "LOG_UNWRITABLE"
	WarnImportSkipped = "IMPORT_SKIPPED"
)

// storeErrorCode classifies an error from loading or validating the store.
func storeErrorCode(err error) (code, suggestion string) {
	var parseErr *roadmap.ParseError
	var dupErr *roadmap.DuplicateLabelError
	var missingErr *roadmap.MissingFieldError
	var invalidErr *roadmap.InvalidFieldError

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrStoreNotFound, "Run 'roadmap init' to create a store, or pass --store"
	case errors.As(err, &parseErr):
		return ErrStoreInvalid, "Fix the reported line in the store file"
	case errors.As(err, &dupErr):
		return ErrDuplicateLabel, "Give every item a unique label"
	case errors.As(err, &missingErr), errors.As(err, &invalidErr):
		return ErrValidation, "Fill in the reported fields"
	default:
		return ErrInternal, ""
	}
}

// boardErrorCode classifies an error from the board client.
func boardErrorCode(err error) (code, suggestion string) {
	if board.IsUnavailable(err) {
		return ErrBoardUnavailable, "Check network access and 'gh auth status', then retry"
	}
	return ErrInternal, ""
}
