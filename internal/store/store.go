// Package store provides the graph storage backing pipeline validation.
package store

import (
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// CycleStore is a graph.Store that can also answer cycle queries without
// materialising a predecessor map.
type CycleStore[K comparable, T any] interface {
	graph.Store[K, T]
	// CreatesCycle reports whether adding an edge from source to target
	// would introduce a cycle.
	CreatesCycle(source, target K) (bool, error)
}

// GraphStore is an in-memory CycleStore used while freezing a pipeline graph.
type GraphStore[K comparable, T any] struct {
	lock             sync.RWMutex
	vertices         map[K]T
	vertexProperties map[K]*graph.VertexProperties

	// outEdges and inEdges index every edge by both endpoints so that edge
	// lookups and the reverse walk in CreatesCycle are O(1) per hop.
	outEdges map[K]map[K]graph.Edge[K] // source -> target
	inEdges  map[K]map[K]graph.Edge[K] // target -> source
}

// NewGraphStore creates an empty store.
func NewGraphStore[K comparable, T any]() CycleStore[K, T] {
	return &GraphStore[K, T]{
		vertices:         make(map[K]T),
		vertexProperties: make(map[K]*graph.VertexProperties),
		outEdges:         make(map[K]map[K]graph.Edge[K]),
		inEdges:          make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *GraphStore[K, T]) AddVertex(k K, value T, props graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = value
	s.vertexProperties[k] = &props

	return nil
}

func (s *GraphStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.vertices[k]
	if !ok {
		return value, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return value, *s.vertexProperties[k], nil
}

func (s *GraphStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	hashes := make([]K, 0, len(s.vertices))
	for k := range s.vertices {
		hashes = append(hashes, k)
	}

	return hashes, nil
}

func (s *GraphStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *GraphStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}
	if len(s.inEdges[k]) > 0 || len(s.outEdges[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, k)
	delete(s.outEdges, k)
	delete(s.vertices, k)
	delete(s.vertexProperties, k)

	return nil
}

func (s *GraphStore[K, T]) AddEdge(source, target K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[source]; !ok {
		s.outEdges[source] = make(map[K]graph.Edge[K])
	}
	s.outEdges[source][target] = edge

	if _, ok := s.inEdges[target]; !ok {
		s.inEdges[target] = make(map[K]graph.Edge[K])
	}
	s.inEdges[target][source] = edge

	return nil
}

func (s *GraphStore[K, T]) UpdateEdge(source, target K, edge graph.Edge[K]) error {
	if _, err := s.Edge(source, target); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.outEdges[source][target] = edge
	s.inEdges[target][source] = edge

	return nil
}

func (s *GraphStore[K, T]) RemoveEdge(source, target K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[target], source)
	delete(s.outEdges[source], target)

	return nil
}

func (s *GraphStore[K, T]) Edge(source, target K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	targets, ok := s.outEdges[source]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}
	edge, ok := targets[target]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

func (s *GraphStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edges := make([]graph.Edge[K], 0)
	for _, targets := range s.outEdges {
		for _, edge := range targets {
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// CreatesCycle walks the in-edges backward from source looking for target.
// Both vertices must already exist. It avoids graph.CreatesCycle, which
// builds a full predecessor map on every call.
func (s *GraphStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	if _, _, err := s.Vertex(source); err != nil {
		return false, errors.Wrapf(err, "unable to get source vertex %v", source)
	}
	if _, _, err := s.Vertex(target); err != nil {
		return false, errors.Wrapf(err, "unable to get target vertex %v", target)
	}

	if source == target {
		return true, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	stack := []K{source}
	visited := make(map[K]struct{})

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}
		// If target is an ancestor of source, the new edge closes a loop.
		if current == target {
			return true, nil
		}
		visited[current] = struct{}{}

		for ancestor := range s.inEdges[current] {
			stack = append(stack, ancestor)
		}
	}

	return false, nil
}

var _ graph.Store[string, string] = (*GraphStore[string, string])(nil)
