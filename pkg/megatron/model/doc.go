// Package model provides the data structures and contracts for the megatron package.
// It defines the graph vertices (nodes), the layer contracts, the batch and tensor
// types flowing through a pipeline, and the option hooks shared by the drawer and
// measure packages.
package model
