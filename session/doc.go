// Package session holds the state that drives an address space: the
// selected placement policy and the Circular-Fit cursor.
//
// The placement engine is stateless about both; a Session passes them
// explicitly on every call and serializes access to the address space so
// that it can be shared, for example by the HTTP monitor.
package session
