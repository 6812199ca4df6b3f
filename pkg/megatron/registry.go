package megatron

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

// LayerFactory creates an empty layer of a given kind, ready to have its
// parameters restored from a pipeline artifact.
type LayerFactory func() model.Layer

var layerKinds = struct {
	mu        sync.RWMutex
	factories map[string]LayerFactory
}{factories: make(map[string]LayerFactory)}

// RegisterLayerKind makes a layer kind available to Load. It follows the
// database/sql driver convention: kinds register themselves from the init
// function of the package defining them, and registering the same kind twice
// panics.
func RegisterLayerKind(kind string, factory LayerFactory) {
	layerKinds.mu.Lock()
	defer layerKinds.mu.Unlock()

	if kind == "" || factory == nil {
		panic("megatron: RegisterLayerKind requires a kind and a factory")
	}
	if _, ok := layerKinds.factories[kind]; ok {
		panic("megatron: RegisterLayerKind called twice for kind " + kind)
	}
	layerKinds.factories[kind] = factory
}

func newLayerOfKind(kind string) (model.Layer, error) {
	layerKinds.mu.RLock()
	factory, ok := layerKinds.factories[kind]
	layerKinds.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownLayerKind, "kind %q", kind)
	}

	return factory(), nil
}
