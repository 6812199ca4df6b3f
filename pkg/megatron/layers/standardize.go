package layers

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

const standardizeKind = "standardize"

// Standardize learns a per-element mean and standard deviation during fit and
// rescales records to zero mean and unit variance during transform. It
// supports online updates, accumulating running sums batch by batch, so it
// can be fitted either eagerly or through PartialFit.
type Standardize struct {
	size   int
	count  int64
	sum    []float64
	sumSq  []float64
	fitted bool
}

// NewStandardize creates an unfitted standardisation layer.
func NewStandardize() *Standardize {
	return &Standardize{}
}

func (*Standardize) Kind() string { return standardizeKind }

func (l *Standardize) OutputShape(inputs []model.Shape) (model.Shape, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "standardize takes 1 input, got %d", len(inputs))
	}

	return inputs[0].Clone(), nil
}

func (l *Standardize) Fitted() bool { return l.fitted }

// Fit learns the statistics from scratch over the batches of every
// application site combined.
func (l *Standardize) Fit(ctx context.Context, sites [][]*model.Tensor) error {
	l.count = 0
	l.sum = nil
	l.sumSq = nil
	l.fitted = false

	return l.PartialFit(ctx, sites)
}

// PartialFit folds one more round of batches into the running statistics.
func (l *Standardize) PartialFit(_ context.Context, sites [][]*model.Tensor) error {
	for _, site := range sites {
		if len(site) != 1 {
			return errors.Wrapf(ErrArity, "standardize takes 1 input, got %d", len(site))
		}
		in := site[0]
		size := in.Shape().Size()

		if l.sum == nil {
			l.size = size
			l.sum = make([]float64, size)
			l.sumSq = make([]float64, size)
		}
		if size != l.size {
			return errors.Wrapf(model.ErrShapeMismatch,
				"standardize was fitted on records of %d elements, got %d", l.size, size)
		}

		data := in.Data()
		for i, v := range data {
			l.sum[i%size] += v
			l.sumSq[i%size] += v * v
		}
		l.count += int64(in.Records())
	}
	l.fitted = true

	return nil
}

func (l *Standardize) Transform(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "standardize takes 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if in.Shape().Size() != l.size {
		return nil, errors.Wrapf(model.ErrShapeMismatch,
			"standardize was fitted on records of %d elements, got %d", l.size, in.Shape().Size())
	}

	out := model.Zeros(in.Records(), in.Shape())
	src := in.Data()
	dst := out.Data()
	for i, v := range src {
		dst[i] = (v - l.mean(i%l.size)) / l.std(i%l.size)
	}

	return out, nil
}

func (l *Standardize) mean(i int) float64 {
	if l.count == 0 {
		return 0
	}

	return l.sum[i] / float64(l.count)
}

func (l *Standardize) std(i int) float64 {
	if l.count == 0 {
		return 1
	}
	mean := l.mean(i)
	variance := l.sumSq[i]/float64(l.count) - mean*mean
	if variance <= 0 {
		return 1
	}

	return math.Sqrt(variance)
}

// MarshalParams serialises the running statistics.
func (l *Standardize) MarshalParams() (map[string]any, error) {
	if !l.fitted {
		return nil, nil
	}

	return map[string]any{
		"size":   l.size,
		"count":  l.count,
		"sum":    l.sum,
		"sum_sq": l.sumSq,
	}, nil
}

// UnmarshalParams restores the running statistics, leaving the layer fitted.
func (l *Standardize) UnmarshalParams(params map[string]any) error {
	size, err := paramInt(params, "size")
	if err != nil {
		return err
	}
	count, err := paramInt(params, "count")
	if err != nil {
		return err
	}
	sum, err := paramFloats(params, "sum")
	if err != nil {
		return err
	}
	sumSq, err := paramFloats(params, "sum_sq")
	if err != nil {
		return err
	}
	if len(sum) != size || len(sumSq) != size {
		return errors.Wrapf(ErrBadParams, "statistics hold %d/%d elements, expected %d", len(sum), len(sumSq), size)
	}

	l.size = size
	l.count = int64(count)
	l.sum = sum
	l.sumSq = sumSq
	l.fitted = true

	return nil
}

var (
	_ model.IncrementalLayer = (*Standardize)(nil)
	_ model.ParamsMarshaler  = (*Standardize)(nil)
)
