package utils

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownItem marks an operation referencing a code with no catalog
	// entry where auto-registration does not apply.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInvalidArgument marks a caller mistake: non-positive quantity, bad
	// enum value, warning threshold below low threshold.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoBOMDefined marks a product that exists but has no material lines.
	ErrNoBOMDefined = errors.New("no bom defined")
	// ErrUncostedProduct marks a profit classification request for a product
	// without any production cost record.
	ErrUncostedProduct = errors.New("uncosted product")
)

func UnknownItemError(itemCode string) error {
	return fmt.Errorf("%w: %s", ErrUnknownItem, itemCode)
}

func InvalidArgumentError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func NoBOMDefinedError(productCode string) error {
	return fmt.Errorf("%w: %s", ErrNoBOMDefined, productCode)
}

func UncostedProductError(productCode string) error {
	return fmt.Errorf("%w: %s", ErrUncostedProduct, productCode)
}
