// Package measure collects per-node timings and cache counters for a
// pipeline, exposed to the drawer for rendering.
package measure

import (
	"sync"
)

type DefaultMeasure struct {
	Nodes map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Nodes: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	mt := &DefaultMetric{
		mu: &sync.Mutex{},
	}
	m.Nodes[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	return m.Nodes[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	return m.Nodes
}

var _ Measure = (*DefaultMeasure)(nil)
