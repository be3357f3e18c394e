// Package render exports diagrams of a grid's rows and realized window.
//
// The [dot] subpackage draws the presented row sequence as a Graphviz
// graph, grouping realized rows by container. [ToPDF] and [ToPNG] convert
// its SVG output with the external rsvg-convert tool (from librsvg).
//
//	src := dot.ToDOT(engine, dot.Options{Field: "name"})
//	svg, err := dot.RenderSVG(src)
//	png, err := render.ToPNG(svg, 2.0)
//
// [dot]: github.com/matzehuels/gridview/pkg/render/dot
package render
