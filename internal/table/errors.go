package table

import "errors"

var (
	// ErrDuplicateColumn is returned when a rename or insert would create a
	// second column with an existing name.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrEmptyColumnName is returned when a rename gives a column no name.
	ErrEmptyColumnName = errors.New("empty column name")

	// ErrUnknownColumn is returned when an operation names a column that is not
	// part of the dataset.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrIndexOutOfRange is returned when a row index does not address a row.
	ErrIndexOutOfRange = errors.New("row index out of range")

	// ErrNoNumericValues is returned when a color range is requested for a
	// column whose visible values contain no numbers.
	ErrNoNumericValues = errors.New("no numeric values")
)
