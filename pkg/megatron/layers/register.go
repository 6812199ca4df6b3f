package layers

import (
	"github.com/askiada/megatron/pkg/megatron"
	"github.com/askiada/megatron/pkg/megatron/model"
)

// Lambda layers are deliberately absent: they carry caller code that cannot
// be rebuilt from an artifact. Model layers reload with a nil estimator and
// wait for SetEstimator.
func init() {
	megatron.RegisterLayerKind(grayscaleKind, func() model.Layer { return NewGrayscale() })
	megatron.RegisterLayerKind(oneHotKind, func() model.Layer { return &OneHot{} })
	megatron.RegisterLayerKind(standardizeKind, func() model.Layer { return &Standardize{} })
	megatron.RegisterLayerKind(flattenKind, func() model.Layer { return NewFlatten() })
	megatron.RegisterLayerKind(modelKind, func() model.Layer { return &Model{} })
}
