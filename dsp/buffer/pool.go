package buffer

import "sync"

// Pool recycles Blocks between render quanta.
type Pool struct {
	pool sync.Pool
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{pool: sync.Pool{New: func() any { return NewBlock(0) }}}
}

// Get returns a silent Block of n samples. Return it with Put.
func (p *Pool) Get(n int) *Block {
	b := p.pool.Get().(*Block) //nolint:forcetypeassert
	b.samples = b.samples[:0]
	b.Resize(n)

	return b
}

// Put recycles b. Nil is ignored.
func (p *Pool) Put(b *Block) {
	if b != nil {
		p.pool.Put(b)
	}
}
