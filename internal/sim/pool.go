package sim

import (
	"sync"

	"github.com/san-kum/galaxysim/internal/dynamo"
)

// SnapshotPool recycles collection-sized buffers so per-frame snapshots
// do not allocate.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(size int) *SnapshotPool {
	return &SnapshotPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make(dynamo.Particles, size)
			},
		},
	}
}

func (p *SnapshotPool) Size() int { return p.size }

func (p *SnapshotPool) Get() dynamo.Particles {
	return p.pool.Get().(dynamo.Particles)
}

// Put returns a buffer. Buffers of the wrong length are dropped.
func (p *SnapshotPool) Put(s dynamo.Particles) {
	if len(s) == p.size {
		clear(s)
		p.pool.Put(s)
	}
}

func (p *SnapshotPool) GetAndCopy(src dynamo.Particles) dynamo.Particles {
	dst := p.Get()
	copy(dst, src)
	return dst
}
