package render

import (
	"testing"
	"time"
)

func TestNaiveScheduler(t *testing.T) {
	type spec struct {
		speed1   uint32
		speed2   uint32
		frameH   uint32
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		spec{1, 2, 10, 4, 6},
		spec{2, 1, 10, 7, 3},
		spec{1, 1000, 10, 1, 9},
	}

	for index, s := range specs {
		workers := []WorkerFeedback{
			WorkerFeedback{Speed: s.speed1},
			WorkerFeedback{Speed: s.speed2},
		}

		sch := NaiveScheduler()
		blockAssignment := sch.Schedule(workers, s.frameH)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}
	}
}

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		frameH   uint32
		rTime1   time.Duration
		rTime2   time.Duration
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		// First call always behaves like the naive scheduler
		spec{10, time.Duration(1), time.Duration(5), 5, 5},
		// Second call should use the render times to assign rows
		spec{10, time.Duration(1), time.Duration(5), 9, 1},
		// This time worker 2 performed much better
		spec{10, time.Duration(5), time.Duration(1), 7, 3},
	}

	// Workers have same speed
	workers := []WorkerFeedback{
		WorkerFeedback{Speed: 1},
		WorkerFeedback{Speed: 1},
	}

	sch := PerfectScheduler()
	for index, s := range specs {
		workers[0].RenderTime = s.rTime1
		workers[1].RenderTime = s.rTime2

		blockAssignment := sch.Schedule(workers, s.frameH)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}

		workers[0].BlockH = blockAssignment[0]
		workers[1].BlockH = blockAssignment[1]
	}
}

func TestPerfectSchedulerMissingFeedback(t *testing.T) {
	workers := []WorkerFeedback{
		WorkerFeedback{Speed: 1, BlockH: 5, RenderTime: time.Duration(1)},
		WorkerFeedback{Speed: 1, BlockH: 5, RenderTime: time.Duration(1)},
	}

	sch := PerfectScheduler()
	sch.Schedule(workers, 10)

	// Worker 1's block was clamped away on a tiny navigation frame; its
	// zero height and render time carry no workload signal and must not
	// end up in a 0/0 workload ratio.
	workers[1].BlockH = 0
	workers[1].RenderTime = 0

	blockAssignment := sch.Schedule(workers, 10)
	if blockAssignment[0] != 5 || blockAssignment[1] != 5 {
		t.Fatalf("expected fallback to the speed-based assignment [5 5]; got %v", blockAssignment)
	}
}
