package render

import (
	"math"
	"time"
)

// Feedback from a worker's previous block used for rescheduling.
type WorkerFeedback struct {
	// Baseline speed estimate for the worker.
	Speed uint32

	// Assigned block height and render time for the previous frame.
	BlockH     uint32
	RenderTime time.Duration
}

// The BlockScheduler interface is implemented by all block scheduling
// algorithms. Schedulers split a frame into horizontal blocks of variable
// height and assign one block per worker.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of workers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each worker
	// in the input list.
	Schedule(workers []WorkerFeedback, frameH uint32) []uint32
}

// The naive scheduler distributes rows proportionally to each worker's
// baseline speed estimate and ignores frame feedback.
type naiveScheduler struct {
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(workers []WorkerFeedback, frameH uint32) []uint32 {
	var total float64
	for _, w := range workers {
		total += float64(w.Speed)
	}
	if total == 0 {
		total = float64(len(workers))
	}
	scaler := float64(frameH) / total

	assignment := make([]uint32, len(workers))
	var scheduledRows uint32
	for idx, w := range workers {
		assignment[idx] = uint32(math.Max(1.0, math.Floor(float64(w.Speed)*scaler)))
		scheduledRows += assignment[idx]
	}

	// In case rows don't add up to the frame height append the missing
	// ones to the first worker.
	assignment[0] += frameH - scheduledRows

	return assignment
}

// The perfect scheduler assumes that the volume of rendering work between two
// subsequent frames is approximately the same and uses the previous frame's
// per-worker render times to rebalance block heights.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool of
// workers using feedback collected from previous frames. The estimated
// workload for worker w on frame i+1 is
// (blockH,w_i / time,w_i) / Σ(blockH_i / time_i).
func (sch *perfectScheduler) Schedule(workers []WorkerFeedback, frameH uint32) []uint32 {
	// If this is the first time we try to schedule, the number of workers
	// has changed or any worker lacks usable feedback fall back to speed
	// estimates. A worker whose block was clamped away on a small frame
	// reports a zero height and time; its workload ratio would be 0/0.
	if len(sch.blockAssignment) != len(workers) || missingFeedback(workers) {
		sch.blockAssignment = NaiveScheduler().Schedule(workers, frameH)
		return sch.blockAssignment
	}

	var total float64
	for _, w := range workers {
		total += float64(w.BlockH) / float64(w.RenderTime)
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, w := range workers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(w.BlockH)/float64(w.RenderTime)*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the frame height append the missing
	// ones to the first worker.
	sch.blockAssignment[0] += frameH - scheduledRows

	return sch.blockAssignment
}

func missingFeedback(workers []WorkerFeedback) bool {
	for _, w := range workers {
		if w.RenderTime == 0 || w.BlockH == 0 {
			return true
		}
	}
	return false
}
