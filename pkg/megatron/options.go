package megatron

import (
	"go.uber.org/zap"

	"github.com/askiada/megatron/pkg/megatron/model"
	"github.com/askiada/megatron/pkg/megatron/storage"
)

// Option configures a pipeline at construction time.
type Option func(p *Pipeline)

// WithVersion sets the pipeline version. Cache entries are namespaced per
// (name, version), so bumping the version isolates a revised pipeline from
// the cached results of its predecessors.
func WithVersion(version string) Option {
	return func(p *Pipeline) {
		p.version = version
	}
}

// WithStorage binds a storage collaborator. Terminal node values are then
// persisted under their record fingerprints, and already-seen records are
// served from storage instead of being recomputed.
func WithStorage(st storage.Storage) Option {
	return func(p *Pipeline) {
		p.storage = st
	}
}

// WithLogger sets the pipeline logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver attaches a pipeline option such as drawer.PipelineDrawer or
// measure.PipelineMeasure.
func WithObserver(opt model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opt)
	}
}
