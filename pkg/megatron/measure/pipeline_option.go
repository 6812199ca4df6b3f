package measure

import (
	"time"

	"github.com/askiada/megatron/pkg/megatron/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartNode.Name)
	pm.AddMetric(model.EndNode.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareNode(info *model.NodeInfo) error {
	pm.AddMetric(info.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareLink(parent, child *model.NodeInfo) error {
	return nil
}

func (pm *pipelineMeasure) OnNodeFit(info *model.NodeInfo, elapsed time.Duration) error {
	pm.GetMetric(info.Name).AddFitDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) OnNodeTransform(info *model.NodeInfo, elapsed time.Duration) error {
	pm.GetMetric(info.Name).AddTransformDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) OnCacheLookup(info *model.NodeInfo, hits, misses int) error {
	pm.GetMetric(info.Name).AddCacheLookup(hits, misses)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure wires a Measure into a pipeline as an option.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
