package session

// A Cursor marks where the next Circular-Fit scan begins.
//
// After every Circular-Fit request the cursor is first reset to 0 if the
// request failed, then advanced by the requested length modulo the size of
// the address space. A failed request therefore still moves the cursor.
type Cursor struct {
	pos int
}

// Position returns the offset where the next scan begins.
func (c *Cursor) Position() int {
	return c.pos
}

// Advance moves the cursor after a request of length units.
func (c *Cursor) Advance(placed bool, length, totalSize int) {
	if !placed {
		c.pos = 0
	}

	c.pos = (c.pos + length) % totalSize
	if c.pos < 0 {
		c.pos += totalSize
	}
}

// Reset moves the cursor back to offset 0.
func (c *Cursor) Reset() {
	c.pos = 0
}
