// Package datarecording stores simulation records in SQLite databases.
//
// A DataRecorder buffers entries in memory and writes them in batches. Each
// table is described by a sample struct: every exported field becomes a
// column named after the field. Fields tagged `memplace_data:"index"` get a
// database index. Only scalar field kinds are accepted.
package datarecording
