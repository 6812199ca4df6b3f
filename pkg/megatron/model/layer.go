package model

import "context"

// Layer transforms the outputs of one or more nodes into a new node's output.
// A single layer instance may be applied at several positions in a graph; its
// learned parameters are shared across all of them, and Fit is invoked exactly
// once with the batches reaching every application site.
type Layer interface {
	// Kind identifies the layer type for serialisation and display.
	Kind() string
	// OutputShape computes the record shape produced from the given input
	// shapes, validating them in the process.
	OutputShape(inputs []Shape) (Shape, error)
	// Fitted reports whether the layer is ready to transform. Stateless
	// layers are always fitted.
	Fitted() bool
	// Fit learns the layer parameters. Each element of sites holds the input
	// tensors reaching one application site, in the site's input order. How
	// sites are combined is the layer's own business.
	Fit(ctx context.Context, sites [][]*Tensor) error
	// Transform applies the fitted layer to the inputs of one application
	// site. Given the same fit state and inputs it must always produce the
	// same output.
	Transform(ctx context.Context, inputs []*Tensor) (*Tensor, error)
}

// IncrementalLayer is implemented by layers whose fit state can be updated
// online, one batch at a time, instead of requiring the full data upfront.
type IncrementalLayer interface {
	Layer
	// PartialFit folds one more round of batches into the fit state and
	// leaves the layer fitted.
	PartialFit(ctx context.Context, sites [][]*Tensor) error
}

// ParamsMarshaler is implemented by layers whose learned parameters can be
// serialised into a pipeline artifact and restored without re-fitting.
type ParamsMarshaler interface {
	MarshalParams() (map[string]any, error)
	UnmarshalParams(params map[string]any) error
}

// Stateless can be embedded by layers that have no fit phase.
type Stateless struct{}

// Fitted always returns true for stateless layers.
func (Stateless) Fitted() bool { return true }

// Fit is a no-op for stateless layers.
func (Stateless) Fit(context.Context, [][]*Tensor) error { return nil }
