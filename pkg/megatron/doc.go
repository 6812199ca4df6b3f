// Package megatron wires preprocessing layers and externally trained models
// into a single directed acyclic graph and executes it over in-memory or
// streaming data.
//
// A pipeline is built from Input declarations and Layer applications, then
// frozen and validated at construction: the graph must be acyclic, every
// declared input must reach an output, and every node feeding an output must
// be reachable from a declared input. Execution walks the nodes in a stable
// topological order, feeding each node exactly once per batch.
//
// Pipelines support two execution modes. The eager mode (Fit, Transform)
// takes fully materialised batches. The streaming mode (FitGenerator,
// TransformGenerator) pulls batches one at a time from a caller-supplied
// producer and never holds more than one in-flight batch; both modes produce
// identical outputs over the same data and fit state.
//
// Binding a storage collaborator turns terminal node computation into a
// content-addressed cache: each record's result is persisted under a
// fingerprint of the pipeline name, version, node and record content, and
// re-transforming already seen records returns the stored values instead of
// recomputing them.
package megatron
