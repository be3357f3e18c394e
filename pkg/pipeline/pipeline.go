// Package pipeline runs a gridview configuration end to end.
//
// A [Config] declares a template, a row source, a viewport and a script of
// row and scroll operations. The pipeline builds the template, opens the
// source, lays the grid out and captures a [snapshot.Snapshot]. The CLI
// commands, the HTTP inspector and the interactive viewer all start here,
// so every entry point lays grids out the same way.
//
// # Usage
//
// Run a configuration headlessly:
//
//	cfg, err := pipeline.LoadConfig("orders.toml")
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	result, err := runner.Execute(ctx, cfg)
//	snapshot.Write(os.Stdout, result.Snapshot)
//
// Or keep a live session for a host that scrolls interactively:
//
//	sess, err := runner.Open(ctx, cfg, layout.WithScheduler(q))
//	defer sess.Close()
//	sess.Engine.ScrollBy(0, 3)
//
// # Configuration
//
// Configs are TOML, YAML or JSON, chosen by file extension:
//
//	[template]
//	columns = ["4", "*"]
//	rows = ["1", "auto", "1"]
//	frozen = { top = 1, bottom = 1 }
//
//	[[template.bindings]]
//	name = "title"
//	class = "scalar"
//	range = [0, 0, 2, 1]
//	text = "Orders"
//
//	[[template.bindings]]
//	name = "name"
//	class = "row"
//	range = [1, 1, 1, 1]
//	field = "name"
//
//	[source]
//	kind = "memory"
//	rows = 500
//
// Lengths are "auto", "*" or "<weight>*" for star tracks, and a number of
// cells for fixed tracks, optionally followed by "min=<n>" and "max=<n>".
// A range is [column, row, column span, row span].
//
// Steps run in order after the initial expand, current and select lists:
//
//	[[steps]]
//	kind = "by"
//	dy = 40
//
//	[[steps]]
//	kind = "edit"
//	row = 3
//	value = "renamed"
package pipeline

import (
	"time"

	"github.com/matzehuels/gridview/pkg/snapshot"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default viewport width in cells.
	DefaultWidth = 80.0

	// DefaultHeight is the default viewport height in cells.
	DefaultHeight = 24.0

	// DefaultRows is the number of rows a memory source generates.
	DefaultRows = 100

	// DefaultPageSize is the page size of remote sources.
	DefaultPageSize = 64

	// DefaultCacheTTL is how long remote pages stay cached.
	DefaultCacheTTL = time.Minute

	// DefaultField is the row value shown by row bindings without a field.
	DefaultField = "name"
)

// Source kinds.
const (
	SourceMemory = "memory"
	SourceRedis  = "redis"
	SourceMongo  = "mongo"
)

// Binding classes.
const (
	ClassScalar = "scalar"
	ClassBlock  = "block"
	ClassRow    = "row"
)

// Step kinds. The first five scroll; the rest operate on rows.
const (
	StepBy        = "by"
	StepTo        = "to"
	StepContainer = "container"
	StepIntoView  = "into_view"
	StepCurrent   = "current"

	StepSetCurrent = "set_current"
	StepExpand     = "expand"
	StepCollapse   = "collapse"
	StepSelect     = "select"
	StepEdit       = "edit"
)

// ValidSources is the set of supported source kinds.
var ValidSources = map[string]bool{
	SourceMemory: true,
	SourceRedis:  true,
	SourceMongo:  true,
}

// ValidClasses is the set of supported binding classes.
var ValidClasses = map[string]bool{
	ClassScalar: true,
	ClassBlock:  true,
	ClassRow:    true,
}

// ValidSteps is the set of supported step kinds.
var ValidSteps = map[string]bool{
	StepBy:        true,
	StepTo:        true,
	StepContainer: true,
	StepIntoView:  true,
	StepCurrent:   true,

	StepSetCurrent: true,
	StepExpand:     true,
	StepCollapse:   true,
	StepSelect:     true,
	StepEdit:       true,
}

// rowSteps are the step kinds that name a row ordinal.
var rowSteps = map[string]bool{
	StepSetCurrent: true,
	StepExpand:     true,
	StepCollapse:   true,
	StepSelect:     true,
	StepEdit:       true,
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the engine state after the last step.
	Snapshot snapshot.Snapshot

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Realized   int
	Allocated  int
	OpenTime   time.Duration
	LayoutTime time.Duration
}
