package idgen

import (
	"fmt"
	"sync"
	"time"
)

const (
	workerIDBits      = 5
	datacenterIDBits  = 5
	sequenceBits      = 12
	maxWorkerID       = -1 ^ (-1 << workerIDBits)
	maxDatacenterID   = -1 ^ (-1 << datacenterIDBits)
	maxSequence       = -1 ^ (-1 << sequenceBits)
	workerIDShift     = sequenceBits
	datacenterIDShift = sequenceBits + workerIDBits
	timestampShift    = sequenceBits + workerIDBits + datacenterIDBits
	customEpoch       = 1704067200000
)

// Generator hands out time-ordered 63-bit ids for requests. Ids from one
// generator are unique and strictly increasing.
type Generator struct {
	mu            sync.Mutex
	datacenterID  int64
	workerID      int64
	sequence      int64
	lastTimestamp int64
	now           func() time.Time
}

func NewGenerator(datacenterID, workerID int64) (*Generator, error) {
	if datacenterID < 0 || datacenterID > maxDatacenterID {
		return nil, fmt.Errorf("datacenter ID must be between 0 and %d", maxDatacenterID)
	}

	if workerID < 0 || workerID > maxWorkerID {
		return nil, fmt.Errorf("worker ID must be between 0 and %d", maxWorkerID)
	}

	return &Generator{
		datacenterID: datacenterID,
		workerID:     workerID,
		now:          time.Now,
	}, nil
}

// NextID never fails: if the wall clock steps backwards the generator keeps
// counting from the last timestamp it issued.
func (g *Generator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := g.currentTimestamp()
	if timestamp < g.lastTimestamp {
		timestamp = g.lastTimestamp
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// sequence exhausted for this millisecond
			timestamp++
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = timestamp

	return (timestamp << timestampShift) |
		(g.datacenterID << datacenterIDShift) |
		(g.workerID << workerIDShift) |
		g.sequence
}

// NextString returns NextID in base62.
func (g *Generator) NextString() string {
	return Encode(g.NextID())
}

func (g *Generator) currentTimestamp() int64 {
	return g.now().UnixMilli() - customEpoch
}

