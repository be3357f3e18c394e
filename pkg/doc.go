// Package pkg provides the libraries of the gridview presentation engine.
//
// # Overview
//
// Gridview presents large, ordered row collections in a template grid. A
// template declares column and row tracks and binds elements to ranges of
// cells; one "container" repeats the row binding area per block of rows.
// Only the containers in and near the viewport are realized, so a grid of a
// million rows costs what its visible window costs.
//
// # Architecture
//
// The data flow through gridview:
//
//	Row source (memory, Redis, MongoDB)
//	         ↓
//	    [rowsource] package (paging, caching, change notifications)
//	         ↓
//	    [rows] package (presenters: ordinals, hierarchy, current row, edits)
//	         ↓
//	    [realize] package (window of realized containers, recycling)
//	         ↓
//	    [layout] package (track measurement, scroll position, placements)
//	         ↓
//	    [snapshot] / terminal view / HTTP inspector
//
// # Quick Start
//
// Build a template and lay out a memory source:
//
//	b := template.NewBuilder()
//	b.AddColumn(grid.Star(1))
//	b.AddRow(grid.Fixed(1))
//	b.AddBinding(grid.GridRange{Right: 1, Bottom: 1}, &template.Row{ID: "name", New: newCell})
//	tmpl, _ := b.Seal()
//
//	rm, _ := rows.NewManager(rows.NewMemorySource(values...))
//	_ = rm.Load(ctx)
//	e, _ := layout.New(tmpl, rm, layout.WithMeasurer(measurer))
//	_, _ = e.Measure(ctx, grid.Size{Width: 80, Height: 24})
//	e.ScrollBy(0, 40)
//	_ = e.Refresh(ctx)
//
// # Main Packages
//
// [grid] - Geometry, track lengths (fixed, auto, star) and grid ranges.
//
// [template] - The sealed grid template: tracks, bindings by placement
// class (scalar, block, row), frozen regions and orientation.
//
// [rows] - The row manager. It turns a [rows.Source] into an ordered
// sequence of presenters and owns expansion, current row, editing and
// selection state.
//
// [rowsource] - Remote row sources behind a page cache. The [rowsource/redis]
// and [rowsource/mongo] backends watch their store for changes.
//
// [realize] - Decides which containers exist and recycles elements between
// them.
//
// [layout] - The scroll and layout engine: measures tracks, estimates
// unrealized containers and arranges every realized element.
//
// [snapshot] - The JSON wire format of a laid-out grid.
//
// [pipeline] - Configuration-driven runs used by every CLI command.
//
// [render/dot] - Graphviz diagrams of the row hierarchy and realized
// window.
//
// ## Infrastructure
//
// [cache] - Page caches and cache key schemes shared by remote
// sources.
//
// [errors] - Error codes, contract violations and input validation.
//
// [observability] - Hooks around fill passes and source fetches.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/grid
// [template]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/template
// [rows]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/rows
// [rows.Source]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/rows#Source
// [rowsource]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/rowsource
// [rowsource/redis]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/rowsource/redis
// [rowsource/mongo]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/rowsource/mongo
// [realize]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/realize
// [layout]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/layout
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/snapshot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/pipeline
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/render/dot
// [cache]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gridview/pkg/observability
package pkg
