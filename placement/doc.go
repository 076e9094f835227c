// Package placement simulates contiguous memory allocation over a fixed-size
// linear address space.
//
// An AddressSpace owns a set of non-overlapping regions. New regions are
// placed with one of four policies (First-Fit, Best-Fit, Worst-Fit and
// Circular-Fit) and all regions of an owner are released at once. Free space
// is never stored; it is derived from the region set on every query.
//
// An AddressSpace is not safe for concurrent use. Callers that share one
// between goroutines must serialize access, as session.Session does.
package placement
