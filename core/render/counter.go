package render

// Counter numbers top-level questions across modules and sections. One
// Counter is shared by reference through a whole compilation.
type Counter struct {
	n int
}

// NewCounter returns a counter whose last issued number is start.
func NewCounter(start int) *Counter {
	return &Counter{n: start}
}

// Value returns the number of the last question issued.
func (c *Counter) Value() int {
	return c.n
}

// Next issues the next question number.
func (c *Counter) Next() int {
	c.n++
	return c.n
}
