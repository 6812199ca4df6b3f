package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Tensor is a dense float64 array holding a batch of records. The first
// dimension is always the record count; the remaining dimensions are the
// record shape.
type Tensor struct {
	shape   Shape
	data    []float64
	records int
}

// NewTensor creates a tensor of records records with the given record shape.
// The data slice is flat, record-major, and must hold exactly
// records * shape.Size() elements.
func NewTensor(records int, shape Shape, data []float64) (*Tensor, error) {
	if records < 0 {
		return nil, errors.Wrapf(ErrInvalidTensor, "negative record count %d", records)
	}
	if len(data) != records*shape.Size() {
		return nil, errors.Wrapf(ErrInvalidTensor,
			"%d records of shape %s require %d elements, got %d",
			records, shape, records*shape.Size(), len(data))
	}

	return &Tensor{shape: shape.Clone(), data: data, records: records}, nil
}

// Zeros creates a zero-filled tensor.
func Zeros(records int, shape Shape) *Tensor {
	return &Tensor{
		shape:   shape.Clone(),
		data:    make([]float64, records*shape.Size()),
		records: records,
	}
}

// Records returns the number of records in the batch dimension.
func (t *Tensor) Records() int {
	return t.records
}

// Shape returns the record shape, without the batch dimension.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the flat record-major backing slice. Callers must not mutate it.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Record returns the flat view of a single record.
func (t *Tensor) Record(i int) []float64 {
	size := t.shape.Size()

	return t.data[i*size : (i+1)*size]
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)

	return &Tensor{shape: t.shape.Clone(), data: data, records: t.records}
}

// Equal reports whether two tensors hold the same shape and values.
func (t *Tensor) Equal(other *Tensor) bool {
	if other == nil || t.records != other.records || !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}

	return true
}

// Concat stacks tensors along the batch dimension. All tensors must share the
// same record shape.
func Concat(tensors ...*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, errors.Wrap(ErrInvalidTensor, "nothing to concatenate")
	}
	shape := tensors[0].shape
	records := 0
	for _, t := range tensors {
		if !t.shape.Equal(shape) {
			return nil, errors.Wrapf(ErrShapeMismatch, "cannot concatenate %s with %s", t.shape, shape)
		}
		records += t.records
	}

	data := make([]float64, 0, records*shape.Size())
	for _, t := range tensors {
		data = append(data, t.data...)
	}

	return &Tensor{shape: shape.Clone(), data: data, records: records}, nil
}

type tensorJSON struct {
	Shape   []int     `json:"shape"`
	Records int       `json:"records"`
	Data    []float64 `json:"data"`
}

// MarshalJSON serialises the tensor for storage values.
func (t *Tensor) MarshalJSON() ([]byte, error) {
	return json.Marshal(tensorJSON{Shape: t.shape, Records: t.records, Data: t.data})
}

// UnmarshalJSON restores a tensor serialised with MarshalJSON.
func (t *Tensor) UnmarshalJSON(raw []byte) error {
	var tj tensorJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return errors.Wrap(err, "unable to decode tensor")
	}
	restored, err := NewTensor(tj.Records, tj.Shape, tj.Data)
	if err != nil {
		return err
	}
	*t = *restored

	return nil
}
