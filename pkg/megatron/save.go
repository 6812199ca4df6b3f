package megatron

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/megatron/pkg/megatron/model"
)

type artifact struct {
	Name    string          `yaml:"name"`
	Version string          `yaml:"version"`
	Inputs  []artifactInput `yaml:"inputs"`
	Layers  []artifactLayer `yaml:"layers"`
	Nodes   []artifactNode  `yaml:"nodes"`
	Outputs []string        `yaml:"outputs,flow"`
}

type artifactInput struct {
	Name  string `yaml:"name"`
	Shape []int  `yaml:"shape,flow"`
}

// artifactLayer is one entry of the layer arena. Nodes reference layers by
// index, so a layer shared across several graph positions is serialised once
// and keeps being shared after a reload.
type artifactLayer struct {
	ID     int            `yaml:"id"`
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params,omitempty"`
}

type artifactNode struct {
	Name   string   `yaml:"name"`
	Layer  int      `yaml:"layer"`
	Inputs []string `yaml:"inputs,flow"`
}

// Save serialises the frozen DAG, including learned layer parameters, to a
// single YAML artifact. No batch data is ever written.
func (p *Pipeline) Save(path string) error {
	art := artifact{
		Name:    p.name,
		Version: p.version,
		Outputs: p.OutputNames(),
	}

	for _, input := range p.inputs {
		art.Inputs = append(art.Inputs, artifactInput{Name: input.Name(), Shape: input.Shape()})
	}

	layerIDs := make(map[model.Layer]int, len(p.layerArena))
	for id, layer := range p.layerArena {
		layerIDs[layer] = id

		entry := artifactLayer{ID: id, Kind: layer.Kind()}
		if marshaler, ok := layer.(model.ParamsMarshaler); ok {
			params, err := marshaler.MarshalParams()
			if err != nil {
				return errors.Wrapf(err, "unable to marshal params of layer %s", layer.Kind())
			}
			entry.Params = params
		}
		art.Layers = append(art.Layers, entry)
	}

	for _, node := range p.path {
		if node.IsInput() {
			continue
		}
		inputs := make([]string, len(node.Inbound()))
		for i, parent := range node.Inbound() {
			inputs[i] = parent.Name()
		}
		art.Nodes = append(art.Nodes, artifactNode{
			Name:   node.Name(),
			Layer:  layerIDs[node.Layer()],
			Inputs: inputs,
		})
	}

	raw, err := yaml.Marshal(art)
	if err != nil {
		return errors.Wrap(err, "unable to marshal pipeline artifact")
	}
	err = os.WriteFile(path, raw, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to write pipeline artifact %s", path)
	}

	return nil
}

// Load reconstructs a pipeline from an artifact written by Save. Layer kinds
// must have been registered beforehand, typically by importing the package
// defining them. Layers whose parameters were serialised come back fitted, so
// the loaded pipeline can transform without a new fit; layers wrapping
// process-local state, like an external estimator, must be re-bound by the
// caller through Pipeline.Node.
func Load(path string, opts ...Option) (*Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read pipeline artifact %s", path)
	}

	var art artifact
	if err := yaml.Unmarshal(raw, &art); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal pipeline artifact")
	}

	layers := make(map[int]model.Layer, len(art.Layers))
	for _, entry := range art.Layers {
		layer, err := newLayerOfKind(entry.Kind)
		if err != nil {
			return nil, err
		}
		if entry.Params != nil {
			marshaler, ok := layer.(model.ParamsMarshaler)
			if !ok {
				return nil, errors.Wrapf(ErrUnknownLayerKind,
					"layer %s carries params but cannot restore them", entry.Kind)
			}
			if err := marshaler.UnmarshalParams(entry.Params); err != nil {
				return nil, errors.Wrapf(err, "unable to restore params of layer %s", entry.Kind)
			}
		}
		layers[entry.ID] = layer
	}

	nodes := make(map[string]*model.Node, len(art.Inputs)+len(art.Nodes))
	inputs := make([]*model.Node, 0, len(art.Inputs))
	for _, entry := range art.Inputs {
		input := model.Input(entry.Name, entry.Shape)
		nodes[entry.Name] = input
		inputs = append(inputs, input)
	}

	for _, entry := range art.Nodes {
		layer, ok := layers[entry.Layer]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownLayerKind, "node %q references unknown layer %d", entry.Name, entry.Layer)
		}
		parents := make([]*model.Node, len(entry.Inputs))
		for i, name := range entry.Inputs {
			parent, ok := nodes[name]
			if !ok {
				return nil, errors.Wrapf(ErrUnresolvedDependency, "node %q references unknown input %q", entry.Name, name)
			}
			parents[i] = parent
		}

		node, err := model.Apply(layer, parents, entry.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to rebuild node %q", entry.Name)
		}
		nodes[entry.Name] = node
	}

	outputs := make([]*model.Node, len(art.Outputs))
	for i, name := range art.Outputs {
		output, ok := nodes[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnresolvedDependency, "output %q is not part of the artifact", name)
		}
		outputs[i] = output
	}

	return New(art.Name, inputs, outputs, append([]Option{WithVersion(art.Version)}, opts...)...)
}
