package jobs

import (
	"errors"
	"sync/atomic"

	"github.com/zerotri/zero/fiber"
)

const (
	SmallPoolCount = 128
	LargePoolCount = 32
	SmallStackSize = 64 * 1024
	LargeStackSize = 512 * 1024
)

var (
	// ErrNotPooled reports a release of a job that was not drawn from a pool.
	ErrNotPooled = errors.New("jobs: job does not belong to a pool")

	// ErrSizeMismatch reports a release whose fiber matches no pool class.
	ErrSizeMismatch = errors.New("jobs: fiber stack size matches no pool")

	// ErrSlotFree reports a release of a slot that is already free.
	ErrSlotFree = errors.New("jobs: slot already free")
)

// Pool is a fixed arena of pre-created jobs claimed and released with
// single-word compare-and-swap. Each slot has a cell in the free table: a
// non-zero word packs (generation, slot+1), zero means claimed. The
// generation advances on every release, so a claim that loaded a cell before
// the slot was claimed and released again fails its compare-and-swap.
// Releasing a slot that is already free is refused; a Job carries no
// generation, so a release through a handle whose slot has since been
// claimed again is not detected. Claim and release are lock-free with one bounded scan per attempt.
type Pool struct {
	stackSize int
	arena     []Job
	free      []atomic.Uint64
	gens      []uint32
}

func newPool(count, stackSize int) *Pool {
	p := &Pool{
		stackSize: stackSize,
		arena:     make([]Job, count),
		free:      make([]atomic.Uint64, count),
		gens:      make([]uint32, count),
	}
	for i := range p.arena {
		p.arena[i] = Job{
			fiber: fiber.Make("", stackSize, nil, nil),
			pool:  p,
			slot:  i,
		}
		p.free[i].Store(pack(0, i))
	}
	return p
}

func pack(gen uint32, slot int) uint64 {
	return uint64(gen)<<32 | uint64(slot+1)
}

// claim scans the free table for an available slot and re-arms its fiber with
// entry and data. A failed compare-and-swap moves on to the next cell; claim
// returns nil once the scan finds no free slot.
func (p *Pool) claim(entry fiber.Entrypoint, data any) *Job {
	for i := range p.free {
		word := p.free[i].Load()
		if word == 0 {
			continue
		}
		if !p.free[i].CompareAndSwap(word, 0) {
			continue
		}
		j := &p.arena[i]
		j.counter = nil
		j.counted = false
		j.fiber.Reset(entry, data)
		return j
	}
	return nil
}

// release returns a claimed slot to the free table with a fresh generation.
func (p *Pool) release(j *Job) error {
	if j.pool != p {
		return ErrNotPooled
	}
	if j.fiber.StackSize() != p.stackSize {
		return ErrSizeMismatch
	}
	j.fiber.Reset(nil, nil)
	j.counter = nil

	next := p.gens[j.slot] + 1
	if !p.free[j.slot].CompareAndSwap(0, pack(next, j.slot)) {
		return ErrSlotFree
	}
	p.gens[j.slot] = next
	return nil
}

// freeCount returns the number of unclaimed slots.
func (p *Pool) freeCount() int {
	n := 0
	for i := range p.free {
		if p.free[i].Load() != 0 {
			n++
		}
	}
	return n
}

// Count returns the pool's slot count.
func (p *Pool) Count() int { return len(p.arena) }

// PoolConfig sets the pool dimensions. Zero fields take the defaults.
type PoolConfig struct {
	SmallCount     int
	LargeCount     int
	SmallStackSize int
	LargeStackSize int
}

// Pools is the pair of shared fiber pools jobs are drawn from: many small
// stacks and a few large ones. A Pools value may be shared by workers on
// several threads.
type Pools struct {
	small *Pool
	large *Pool
}

// NewPools allocates both pools up front: every slot's fiber exists after
// this call and is never reallocated.
func NewPools(cfg PoolConfig) *Pools {
	if cfg.SmallCount <= 0 {
		cfg.SmallCount = SmallPoolCount
	}
	if cfg.LargeCount <= 0 {
		cfg.LargeCount = LargePoolCount
	}
	if cfg.SmallStackSize <= 0 {
		cfg.SmallStackSize = SmallStackSize
	}
	if cfg.LargeStackSize <= 0 {
		cfg.LargeStackSize = LargeStackSize
	}
	return &Pools{
		small: newPool(cfg.SmallCount, cfg.SmallStackSize),
		large: newPool(cfg.LargeCount, cfg.LargeStackSize),
	}
}

// Small returns the small-stack pool.
func (p *Pools) Small() *Pool { return p.small }

// Large returns the large-stack pool.
func (p *Pools) Large() *Pool { return p.large }

// Release returns a claimed job to its pool. The job's stack class is
// validated first; a mismatch is refused without touching either free table.
func (p *Pools) Release(j *Job) error {
	if j == nil || j.pool == nil {
		return ErrNotPooled
	}
	switch j.fiber.StackSize() {
	case p.small.stackSize:
		return p.small.release(j)
	case p.large.stackSize:
		return p.large.release(j)
	default:
		return ErrSizeMismatch
	}
}

// SmallFree returns the number of free small slots.
func (p *Pools) SmallFree() int { return p.small.freeCount() }

// LargeFree returns the number of free large slots.
func (p *Pools) LargeFree() int { return p.large.freeCount() }
