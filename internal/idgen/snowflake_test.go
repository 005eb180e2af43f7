package idgen

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name         string
		datacenterID int64
		workerID     int64
		shouldError  bool
	}{
		{"valid IDs", 0, 0, false},
		{"valid max IDs", 31, 31, false},
		{"invalid datacenter negative", -1, 0, true},
		{"invalid datacenter too large", 32, 0, true},
		{"invalid worker negative", 0, -1, true},
		{"invalid worker too large", 0, 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator(tt.datacenterID, tt.workerID)

			if tt.shouldError {
				if err == nil {
					t.Errorf("expected error for datacenter=%d, worker=%d, got nil", tt.datacenterID, tt.workerID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gen.datacenterID != tt.datacenterID || gen.workerID != tt.workerID {
				t.Errorf("got datacenter=%d worker=%d", gen.datacenterID, gen.workerID)
			}
		})
	}
}

func TestNextID_Ordered(t *testing.T) {
	gen, _ := NewGenerator(1, 1)

	prev := gen.NextID()
	for i := 0; i < 10000; i++ {
		id := gen.NextID()
		if id <= prev {
			t.Fatalf("IDs not ordered at %d: %d should be > %d", i, id, prev)
		}
		prev = id
	}
}

func TestNextID_ClockMovesBackwards(t *testing.T) {
	gen, _ := NewGenerator(1, 1)
	now := time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)
	gen.now = func() time.Time { return now }

	first := gen.NextID()
	now = now.Add(-time.Second)
	second := gen.NextID()

	if second <= first {
		t.Errorf("expected ids to keep increasing after clock step back: %d then %d", first, second)
	}
}

func TestNextID_SequenceOverflowAdvancesTimestamp(t *testing.T) {
	gen, _ := NewGenerator(0, 0)
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return frozen }

	seen := make(map[int64]bool)
	for i := 0; i < maxSequence+10; i++ {
		id := gen.NextID()
		if seen[id] {
			t.Fatalf("duplicate ID %d at iteration %d", id, i)
		}
		seen[id] = true
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen, _ := NewGenerator(1, 1)

	numGoroutines := 10
	idsPerGoroutine := 1000

	var mu sync.Mutex
	ids := make(map[int64]bool, numGoroutines*idsPerGoroutine)
	errs := make(chan error, numGoroutines)

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				id := gen.NextID()
				mu.Lock()
				if ids[id] {
					mu.Unlock()
					errs <- fmt.Errorf("duplicate ID: %d in goroutine %d", id, goroutineID)
					return
				}
				ids[id] = true
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestIDStructure(t *testing.T) {
	gen, _ := NewGenerator(5, 10)
	issued := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	gen.now = func() time.Time { return issued }

	id := gen.NextID()

	if dc := (id >> datacenterIDShift) & maxDatacenterID; dc != 5 {
		t.Errorf("datacenter ID in ID = %d, want 5", dc)
	}
	if worker := (id >> workerIDShift) & maxWorkerID; worker != 10 {
		t.Errorf("worker ID in ID = %d, want 10", worker)
	}
	if ms := (id >> timestampShift) + customEpoch; ms != issued.UnixMilli() {
		t.Errorf("timestamp in ID = %d, want %d", ms, issued.UnixMilli())
	}
}

func TestNextString(t *testing.T) {
	gen, _ := NewGenerator(1, 1)

	s := gen.NextString()
	if s == "" || s == "0" {
		t.Fatalf("expected a non-zero id, got %q", s)
	}
	for _, c := range s {
		if !strings.ContainsRune(base62Chars, c) {
			t.Errorf("request id %q contains %q", s, c)
		}
	}
}

func BenchmarkNextString(b *testing.B) {
	gen, _ := NewGenerator(1, 1)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		gen.NextString()
	}
}
