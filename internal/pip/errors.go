package pip

import (
	"errors"
	"fmt"
)

var (
	// ErrVenvCreation is returned when no candidate interpreter could create
	// the virtual environment. The message is shown to users verbatim.
	ErrVenvCreation = errors.New("Unable to create python3 venv environment.")

	// ErrNotOutdated signals that the primary package has no newer release.
	// It is an expected outcome, not a malfunction.
	ErrNotOutdated = errors.New("Primary package is not outdated.")

	// ErrPackageNotFound is returned when the primary package is missing from
	// the installed package list.
	ErrPackageNotFound = errors.New("could not find primary package among installed packages")

	// ErrUnsupportedReceipt is returned for receipts whose primary source was
	// not installed by this backend.
	ErrUnsupportedReceipt = errors.New("receipt does not have a primary source of type pip3")

	// ErrNoPackages is returned when an install is requested without packages.
	ErrNoPackages = errors.New("no packages requested")

	// ErrReceiptWritten is returned when a context that already holds a
	// receipt is used for another install.
	ErrReceiptWritten = errors.New("install context already holds a receipt")

	// ErrMalformedPin is wrapped by InvalidVersionError for pins that are not
	// a single version.
	ErrMalformedPin = errors.New("not a single version")
)

// InvalidVersionError reports a version pin that does not parse.
type InvalidVersionError struct {
	Version string
	Err     error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version pin %q: %v", e.Version, e.Err)
}

func (e *InvalidVersionError) Unwrap() error {
	return e.Err
}
