// Package drawer renders a frozen pipeline graph to Graphviz DOT, suitable
// for piping into `dot -Tsvg`.
package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/megatron/pkg/megatron/measure"
	"github.com/askiada/megatron/pkg/megatron/model"
)

// SVGDrawer is a drawer that creates a DOT file with the pipeline graph.
type SVGDrawer struct {
	graph       graph.Graph[string, string]
	nodes       map[string]struct{}
	svgFileName string
}

// NewSVGDrawer creates a new SVG drawer.
func NewSVGDrawer(svgFileName string) *SVGDrawer {
	return &SVGDrawer{
		svgFileName: svgFileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
		nodes:       make(map[string]struct{}),
	}
}

// AddNode adds a node to the pipeline graph, styled by its kind.
func (d *SVGDrawer) AddNode(info *model.NodeInfo) error {
	opts := []func(*graph.VertexProperties){}
	switch {
	case info.Kind == model.InputNodeKind:
		opts = append(opts,
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", "lightblue"),
		)
	case info.Output:
		opts = append(opts,
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", "palegreen"),
		)
	case info.LayerKind != "":
		opts = append(opts, graph.VertexAttribute("xlabel", info.LayerKind))
	}

	err := d.graph.AddVertex(info.Name, opts...)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.nodes[info.Name] = struct{}{}

	return nil
}

// AddLink adds a link between a producer and a consumer node.
func (d *SVGDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *SVGDrawer) Draw() error {
	file, err := os.Create(d.svgFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.svgFileName)
	}
	defer func() { _ = file.Close() }()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.svgFileName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure decorates nodes with their average transform duration and cache
// counters, colouring the slowest nodes towards red.
func (d *SVGDrawer) AddMeasure(msr measure.Measure) error {
	elapsedColors := make(map[time.Duration]string)
	sortedElapsed := []time.Duration{}

	for name, metric := range msr.AllMetrics() {
		if _, ok := d.nodes[name]; !ok {
			continue
		}

		elapsed := metric.AVGTransformDuration()
		if elapsed == 0 {
			continue
		}
		if _, ok := elapsedColors[elapsed]; ok {
			continue
		}

		elapsedColors[elapsed] = ""
		sortedElapsed = append(sortedElapsed, elapsed)
	}

	if len(sortedElapsed) == 0 {
		return nil
	}

	sort.Slice(sortedElapsed, func(i, j int) bool {
		return sortedElapsed[i] > sortedElapsed[j]
	})

	maxValue := sortedElapsed[0]
	minValue := sortedElapsed[len(sortedElapsed)-1]

	for curr := range elapsedColors {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(curr-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := -maxRGB*fraction + maxRGB

		heatColor, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		elapsedColors[curr] = heatColor.ToHEX().String()
	}

	return d.updateMetrics(msr, elapsedColors)
}

func (d *SVGDrawer) updateMetrics(msr measure.Measure, elapsedColors map[time.Duration]string) error {
	for name, metric := range msr.AllMetrics() {
		if _, ok := d.nodes[name]; !ok {
			continue
		}

		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		elapsed := metric.AVGTransformDuration()
		if elapsed == 0 {
			continue
		}

		label := elapsed.String()
		if hits, misses := metric.CacheHits(), metric.CacheMisses(); hits+misses > 0 {
			label += fmt.Sprintf(", cache %d/%d", hits, hits+misses)
		}

		properties.Attributes["xlabel"] = label
		properties.Attributes["color"] = elapsedColors[elapsed]
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [DOT] method.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)

		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceProperties.Attributes, "xlabel")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencies {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*SVGDrawer)(nil)
