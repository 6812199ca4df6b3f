package store

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, vertices ...string) CycleStore[string, string] {
	t.Helper()

	s := NewGraphStore[string, string]()
	for _, v := range vertices {
		require.NoError(t, s.AddVertex(v, v, graph.VertexProperties{}))
	}

	return s
}

func addEdge(t *testing.T, s CycleStore[string, string], source, target string) {
	t.Helper()
	require.NoError(t, s.AddEdge(source, target, graph.Edge[string]{Source: source, Target: target}))
}

func TestAddVertexTwice(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "a")
	err := s.AddVertex("a", "a", graph.VertexProperties{})
	assert.ErrorIs(t, err, graph.ErrVertexAlreadyExists)
}

func TestVertexNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, _, err := s.Vertex("missing")
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)
}

func TestEdges(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "a", "b", "c")
	addEdge(t, s, "a", "b")
	addEdge(t, s, "b", "c")

	edge, err := s.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", edge.Target)

	_, err = s.Edge("a", "c")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)

	edges, err := s.ListEdges()
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestRemoveVertexWithEdges(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "a", "b")
	addEdge(t, s, "a", "b")

	err := s.RemoveVertex("a")
	assert.ErrorIs(t, err, graph.ErrVertexHasEdges)

	require.NoError(t, s.RemoveEdge("a", "b"))
	require.NoError(t, s.RemoveVertex("a"))

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreatesCycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "a", "b", "c", "d")
	addEdge(t, s, "a", "b")
	addEdge(t, s, "b", "c")

	tcs := map[string]struct {
		source string
		target string
		want   bool
	}{
		"closes a loop":     {source: "c", target: "a", want: true},
		"self loop":         {source: "a", target: "a", want: true},
		"forward edge":      {source: "a", target: "c", want: false},
		"sibling edge":      {source: "a", target: "d", want: false},
		"reverse of a path": {source: "b", target: "a", want: true},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := s.CreatesCycle(tc.source, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreatesCycleUnknownVertex(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "a")
	_, err := s.CreatesCycle("a", "missing")
	assert.Error(t, err)
}
