package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/measure"
	"github.com/askiada/megatron/pkg/megatron/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddNode(model.StartNode)
	if err != nil {
		return errors.Wrap(err, "unable to add start node to drawer")
	}
	err = pd.AddNode(model.EndNode)
	if err != nil {
		return errors.Wrap(err, "unable to add end node to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareNode(info *model.NodeInfo) error {
	err := pd.AddNode(info)
	if err != nil {
		return err
	}

	if info.Kind == model.InputNodeKind {
		err = pd.AddLink(model.StartNode.Name, info.Name)
		if err != nil {
			return err
		}
	}
	if info.Output {
		err = pd.AddLink(info.Name, model.EndNode.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (pd *pipelineDrawer) PrepareLink(parent, child *model.NodeInfo) error {
	return pd.AddLink(parent.Name, child.Name)
}

func (pd *pipelineDrawer) OnNodeFit(info *model.NodeInfo, elapsed time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) OnNodeTransform(info *model.NodeInfo, elapsed time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) OnCacheLookup(info *model.NodeInfo, hits, misses int) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer wires a Drawer into a pipeline as an option. The measure may
// be nil when no metrics should be rendered.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure}
}
