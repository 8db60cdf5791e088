package errors

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Handlers classify every domain error by one of these.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrTrackNotFound        = fmt.Errorf("track %w", ErrNotFound)
	ErrInvoiceNotFound      = fmt.Errorf("invoice %w", ErrNotFound)
	ErrBookmarkNotFound     = fmt.Errorf("bookmark %w", ErrNotFound)
	ErrArchiveEntryNotFound = fmt.Errorf("archive entry %w", ErrNotFound)
	ErrReferralsNotFound    = fmt.Errorf("referrals %w", ErrNotFound)
	ErrStatusNotFound       = fmt.Errorf("status %w", ErrNotFound)

	ErrAlreadyExists      = fmt.Errorf("already exists: %w", ErrConflict)
	ErrDuplicateBookmark  = fmt.Errorf("bookmark with this track number already exists: %w", ErrConflict)
	ErrInvoiceAlreadyPaid = fmt.Errorf("invoice already paid: %w", ErrConflict)

	ErrSelfReferral       = fmt.Errorf("user cannot refer themselves: %w", ErrInvalidArgument)
	ErrReferrerNotFound   = fmt.Errorf("referrer does not exist: %w", ErrInvalidArgument)
	ErrInvalidPercentage  = fmt.Errorf("percentage must be non-negative: %w", ErrInvalidArgument)
	ErrInvalidRate        = fmt.Errorf("personal rate must be non-negative: %w", ErrInvalidArgument)
	ErrInvalidAmount      = fmt.Errorf("amount must be non-negative: %w", ErrInvalidArgument)
	ErrInvalidPhone       = fmt.Errorf("phone must contain digits only: %w", ErrInvalidArgument)
	ErrInvalidTrackNumber = fmt.Errorf("track number must not be empty: %w", ErrInvalidArgument)
	ErrWrongPassword      = fmt.Errorf("current password is wrong: %w", ErrInvalidArgument)
)
