package adjacency

import "sync"

// CursorPool recycles *Cursor values across traversal calls, the same
// sync.Pool-of-reusable-objects idiom the teacher's row-slice and
// string-builder pools use: a cursor's backing block array is a fixed
// 64-element array, so reuse avoids an allocation on every per-node
// adjacency walk in a tight query loop.
type CursorPool struct {
	pool sync.Pool
}

// NewCursorPool returns a ready-to-use pool.
func NewCursorPool() *CursorPool {
	return &CursorPool{
		pool: sync.Pool{New: func() any { return &Cursor{} }},
	}
}

// Get returns a Cursor reset onto source's targets in list. The returned
// cursor must be released with Put once the caller is done with it.
func (p *CursorPool) Get(list *AdjacencyList, source int64) *Cursor {
	c := p.pool.Get().(*Cursor)
	c.Reset(list, source)
	return c
}

// Put returns a cursor to the pool. Callers must not use c after calling
// Put.
func (p *CursorPool) Put(c *Cursor) {
	c.entry = nil
	c.blockLen = 0
	c.within = 0
	p.pool.Put(c)
}
