// Package realize materializes containers of a gridview template.
//
// A container is one block of rows plus its block elements. The [Manager]
// binds pooled [ContainerView] values to container ordinals and keeps the
// realized window, a contiguous run of ordinals, in sync with the host's
// [Panel]. Views are recycled through a free list; rebinding a view to a
// new ordinal reuses its elements.
//
// The host child order is always: leading scalars, containers in ascending
// ordinal order, trailing scalars. The current container and any pinned
// container stay realized when they leave the window, so they sit
// immediately before or after it in that order; [Manager.Placement]
// reports where the current one is.
//
// Window transitions follow a strict contract. Realizing an ordinal out of
// range, one that is already in the window or one not adjacent to it, and
// virtualizing a view that is not at an end of the window all panic with a
// CONTRACT_VIOLATION error. A row source failure while binding rolls back:
// the view returns to the pool, the panel is untouched, and the error is
// returned.
package realize
