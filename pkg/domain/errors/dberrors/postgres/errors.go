package postgres

import (
	"fmt"

	kerr "github.com/musecrm/museflow/pkg/domain/errors"
)

// requested record is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return kerr.ErrMissing
}

// requested record already exists.
type Duplicated struct {
	Table    string
	Identity string
}

var _ error = Duplicated{}

func (d Duplicated) Error() string {
	return fmt.Sprintf("%s already exists in %s", d.Identity, d.Table)
}

func (d Duplicated) Unwrap() error {
	return kerr.ErrConflict
}

// requested record is found more than expected.
type TooMuch struct {
	Table    string
	Identity string
}

var _ error = TooMuch{}

func (m TooMuch) Error() string {
	return fmt.Sprintf("%s is found too much in %s", m.Identity, m.Table)
}

func (m TooMuch) Unwrap() error {
	return kerr.ErrTooMuch
}
