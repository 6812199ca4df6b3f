package layers

import "github.com/pkg/errors"

var (
	ErrArity              = errors.New("unexpected number of inputs")
	ErrEstimatorMustBeSet = errors.New("estimator must be bound")
	ErrSharedModel        = errors.New("a model layer cannot be shared across graph positions")
	ErrValueOutOfRange    = errors.New("value out of range")
	ErrBadParams          = errors.New("invalid layer params")
)
