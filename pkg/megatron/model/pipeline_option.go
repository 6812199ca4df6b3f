package model

import "time"

// PipelineOption defines the hooks observers can attach to a pipeline.
// The drawer and measure packages implement it.
type PipelineOption interface {
	// New initialises the pipeline option before any node is prepared.
	New() error

	pipelineNodeOption
	pipelineCacheOption

	// Finish runs when the caller closes out the pipeline.
	Finish() error
}

// pipelineNodeOption defines the graph and execution hooks.
type pipelineNodeOption interface {
	// PrepareNode runs once per node when the pipeline is frozen, in
	// topological order.
	PrepareNode(info *NodeInfo) error
	// PrepareLink runs once per edge when the pipeline is frozen.
	PrepareLink(parent, child *NodeInfo) error
	// OnNodeFit runs after a layer's fit completed at this node.
	OnNodeFit(info *NodeInfo, elapsed time.Duration) error
	// OnNodeTransform runs after a node's output was computed for one batch.
	OnNodeTransform(info *NodeInfo, elapsed time.Duration) error
}

// pipelineCacheOption defines the storage hooks.
type pipelineCacheOption interface {
	// OnCacheLookup runs after the bound storage was consulted for an
	// output node.
	OnCacheLookup(info *NodeInfo, hits, misses int) error
}
