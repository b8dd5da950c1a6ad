package moderator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"

	"github.com/goto/pulse/core/event/moderator"
)

type fakeWriter struct {
	mu      sync.Mutex
	batches [][][]byte
	failing bool
	closed  bool
}

func (f *fakeWriter) Write(messages [][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return assert.AnError
	}
	batch := make([][]byte, len(messages))
	copy(batch, messages)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWriter) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func TestWorker(t *testing.T) {
	logger := log.NewNoop()

	t.Run("writes accumulated messages in batches", func(t *testing.T) {
		writer := &fakeWriter{}
		ch := make(chan []byte, 10)
		worker := moderator.NewWorker(ch, writer, 10*time.Millisecond, logger)

		ctx, cancel := context.WithCancel(context.Background())
		go worker.Run(ctx)

		ch <- []byte("one")
		ch <- []byte("two")

		assert.Eventually(t, func() bool {
			return writer.batchCount() > 0
		}, time.Second, 5*time.Millisecond)

		cancel()
		assert.NoError(t, worker.Close())
		assert.True(t, writer.closed)
	})
	t.Run("keeps the batch when the write fails", func(t *testing.T) {
		writer := &fakeWriter{failing: true}
		ch := make(chan []byte, 10)
		worker := moderator.NewWorker(ch, writer, 5*time.Millisecond, logger)

		ctx, cancel := context.WithCancel(context.Background())
		go worker.Run(ctx)

		ch <- []byte("stuck")
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, 0, writer.batchCount())

		writer.mu.Lock()
		writer.failing = false
		writer.mu.Unlock()

		assert.Eventually(t, func() bool {
			return writer.batchCount() == 1
		}, time.Second, 5*time.Millisecond)

		cancel()
		assert.NoError(t, worker.Close())
	})
}
