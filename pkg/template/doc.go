// Package template describes the static grid a gridview engine lays out.
//
// A template has two track collections, columns and rows, and a set of
// bindings placed on grid ranges. Bindings come in three classes:
//
//   - [Scalar] bindings exist once, before or after the repeated tracks
//     (headers, footers, frozen summaries).
//   - [Block] bindings exist once per container, such as a group header.
//   - [Row] bindings exist once per data row.
//
// The union of the row binding ranges is the row range. The union of the
// row range and the block bindings is the block range; its tracks on the
// main axis repeat once per container. With a block dimension above one,
// each container holds that many rows laid side by side along the cross
// axis, and the row range's cross tracks repeat once per row.
//
// A [Builder] collects declarations and [Builder.Seal] validates them once,
// returning an INVALID_TEMPLATE error that wraps an [errors.TemplateError]
// naming the failed rule. A sealed template never changes.
//
// [errors.TemplateError]: github.com/matzehuels/gridview/pkg/errors.TemplateError
package template
