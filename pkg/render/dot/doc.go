// Package dot renders a grid's row sequence as a Graphviz diagram.
//
// Every loaded row becomes a node; hierarchical rows get an edge from
// their parent. Rows of realized containers are grouped in a cluster per
// container, isolated containers (the current row's, pinned ones) drawn
// dashed. The current row is bold and selected rows are shaded, so the
// diagram shows at a glance which part of the sequence the engine holds.
//
//	src := dot.ToDOT(engine, dot.Options{Field: "name", MaxRows: 100})
//	svg, err := dot.RenderSVG(src)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package dot
