package model

import "github.com/pkg/errors"

var (
	ErrInvalidTensor  = errors.New("invalid tensor")
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrRaggedBatch    = errors.New("all inputs in a batch must have the same record count")
	ErrLayerMustBeSet = errors.New("layer must be set")
	ErrNameMustBeSet  = errors.New("name must be set")
	ErrInputMustBeSet = errors.New("at least one input node must be set")
	ErrEndOfStream    = errors.New("end of stream")
)
