// Package rows maintains the logical row sequence a grid presents.
//
// A [Source] supplies ordered rows and change notifications. A [Manager]
// turns the source into a sequence of [Presenter] values, one per row,
// carrying the row's ordinal, hierarchy depth and its current, selected,
// editing and expanded flags.
//
// # Flat and recursive sequences
//
// In flat mode the sequence mirrors the source; presenters are loaded on
// first access, so a million-row source costs one slice header per row
// until rows are viewed. In recursive mode the source must implement
// [Hierarchical]. Top-level rows are loaded eagerly, [Manager.Expand]
// splices a row's descendants in depth-first pre-order and
// [Manager.Collapse] removes the contiguous run of deeper rows after it.
// Only the ordinals after the splice are renumbered.
//
// # Current row
//
// At most one presenter is current. [Manager.SetCurrent] clears the old
// flag before setting the new one and notifies observers once. Editing is
// only legal on the current row; calling [Manager.BeginEdit] or
// [Manager.EndEdit] on any other row panics with a contract violation.
package rows
