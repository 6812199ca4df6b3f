// Package layers provides the built-in layer kinds: pixel transforms,
// encoders, normalisers and the adapter wrapping an externally trained model.
// Importing the package registers every serialisable kind for megatron.Load.
package layers
