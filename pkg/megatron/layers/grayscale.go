package layers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

const grayscaleKind = "grayscale"

// Grayscale averages the channel dimension of an image, turning records of
// shape (h,w,c) into (h,w,1). It is stateless, so one instance can be reused
// on any number of image inputs without fitting.
type Grayscale struct {
	model.Stateless
}

// NewGrayscale creates a grayscale conversion layer.
func NewGrayscale() *Grayscale {
	return &Grayscale{}
}

func (*Grayscale) Kind() string { return grayscaleKind }

func (*Grayscale) OutputShape(inputs []model.Shape) (model.Shape, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "grayscale takes 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if len(in) != 3 {
		return nil, errors.Wrapf(model.ErrShapeMismatch, "grayscale expects (h,w,c) records, got %s", in)
	}

	return model.Shape{in[0], in[1], 1}, nil
}

func (*Grayscale) Transform(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "grayscale takes 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	shape := in.Shape()
	channels := shape[2]

	out := model.Zeros(in.Records(), model.Shape{shape[0], shape[1], 1})
	src := in.Data()
	dst := out.Data()
	for i := range dst {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += src[i*channels+c]
		}
		dst[i] = sum / float64(channels)
	}

	return out, nil
}

var _ model.Layer = (*Grayscale)(nil)
