package depot

import (
	"iter"
)

var _ iCursor = &Cursor{}

// Cursor walks a filter by index. The filter is locked from the first Next
// until iteration ends or Reset is called.
type Cursor struct {
	filter *Filter

	entityIndex int
	remaining   int

	initialized bool
}

func newCursor(filter *Filter) *Cursor {
	return &Cursor{
		filter: filter,
	}
}

func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	c.Reset()
	return false
}

func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		c.initialize()
		defer c.Reset()

		for c.entityIndex < c.remaining {
			c.entityIndex++
			if !yield(c.entityIndex-1, c.filter.entities[c.entityIndex-1]) {
				return
			}
		}
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.filter.Lock()
	c.remaining = c.filter.Len()
	c.entityIndex = 0
	c.initialized = true
}

// Reset ends the current iteration early and releases the filter lock.
func (c *Cursor) Reset() {
	if c.initialized {
		c.initialized = false
		c.filter.Unlock()
	}
	c.entityIndex = 0
	c.remaining = 0
}

func (c *Cursor) Entity() Entity {
	return c.filter.entities[c.entityIndex-1]
}

// Index returns the filter position of the current entity.
func (c *Cursor) Index() int {
	return c.entityIndex - 1
}

func (c *Cursor) Filter() *Filter {
	return c.filter
}

func (c *Cursor) Remaining() int {
	return c.remaining - c.entityIndex
}

func (c *Cursor) TotalMatched() int {
	return c.filter.Len()
}
