package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if !q.Enqueue(ctx, Job{BatchID: "b1", TaskKey: "TASK-101"}) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Dequeue(ctx)
	if job.TaskKey != "TASK-101" {
		t.Errorf("expected TASK-101, got %v", job.TaskKey)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{TaskKey: "A"}) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, Job{TaskKey: "B"}) {
		t.Error("expected enqueue to succeed")
	}

	if q.Enqueue(ctx, Job{TaskKey: "C"}) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.Cap() != defaultQueueCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultQueueCapacity, q.Cap())
	}
}

func TestInMemoryQueue_CancelledEnqueue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, Job{TaskKey: "A"}) {
		t.Error("expected enqueue to fail with a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	numProducers := 10
	numJobs := 100

	var wg sync.WaitGroup
	for i := 0; i < numProducers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numJobs; j++ {
				job := Job{BatchID: fmt.Sprintf("batch%d", id), TaskKey: fmt.Sprintf("TASK-%d", j)}
				for !q.Enqueue(ctx, job) {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	consumed := make(chan string, numProducers*numJobs)
	for i := 0; i < 4; i++ {
		go func() {
			for job := range q.Dequeue(ctx) {
				consumed <- job.TaskKey
			}
		}()
	}

	wg.Wait()

	deadline := time.After(2 * time.Second)
	for n := 0; n < numProducers*numJobs; n++ {
		select {
		case <-consumed:
		case <-deadline:
			t.Fatalf("consumed only %d of %d jobs", n, numProducers*numJobs)
		}
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{TaskKey: "A"}) {
		t.Error("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, Job{TaskKey: "B"}) {
		t.Error("expected enqueue to fail after closing")
	}

	// Jobs queued before Close are still drained, then the channel closes.
	jobs := q.Dequeue(ctx)
	timeout := time.After(100 * time.Millisecond)
	var drained []string
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				if len(drained) != 1 || drained[0] != "A" {
					t.Errorf("expected to drain [A], got %v", drained)
				}
				return
			}
			drained = append(drained, job.TaskKey)
		case <-timeout:
			t.Fatal("dequeue channel was not closed")
		}
	}
}

func TestJob_Respond(t *testing.T) {
	reply := make(chan Result, 1)
	job := Job{BatchID: "b1", TaskKey: "TASK-101", Reply: reply}

	job.Respond(Result{Err: errors.New("boom")})
	// A second response has no room and must not block.
	job.Respond(Result{})

	r := <-reply
	if r.BatchID != "b1" || r.TaskKey != "TASK-101" {
		t.Errorf("expected result stamped with job identity, got %+v", r)
	}
	if r.Err == nil {
		t.Error("expected the first result to be delivered")
	}

	// A job without a reply channel is a no-op.
	Job{}.Respond(Result{})
}

func TestInMemoryQueue_Drain(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	q.Enqueue(ctx, Job{TaskKey: "A"})
	q.Enqueue(ctx, Job{TaskKey: "B"})

	if left := q.Drain(); left != nil {
		t.Errorf("expected no drain on an open queue, got %v", left)
	}

	_ = q.Close()
	left := q.Drain()
	if len(left) != 2 || left[0].TaskKey != "A" || left[1].TaskKey != "B" {
		t.Errorf("expected [A B], got %v", left)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected empty queue after drain, got %d", l)
	}
}
