package moderator

import (
	"context"
	"sync"
	"time"

	"github.com/goto/salt/log"
)

type Writer interface {
	Write(messages [][]byte) error
	Close() error
}

// Worker drains the message channel and writes the accumulated batch every
// batchInterval. A failed write keeps the batch for the next flush.
type Worker struct {
	mu       sync.Mutex
	messages [][]byte

	messageChan   <-chan []byte
	batchInterval time.Duration
	wg            sync.WaitGroup
	writer        Writer
	logger        log.Logger
}

func NewWorker(messageChan <-chan []byte, writer Writer, batchInterval time.Duration, logger log.Logger) *Worker {
	w := &Worker{
		messageChan:   messageChan,
		batchInterval: batchInterval,
		writer:        writer,
		logger:        logger,
	}
	w.wg.Add(1)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Flush()
			return
		case message := <-w.messageChan:
			w.mu.Lock()
			w.messages = append(w.messages, message)
			w.mu.Unlock()
		case <-ticker.C:
			w.Flush()
		}
	}
}

func (w *Worker) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.messages) == 0 {
		return
	}

	err := w.writer.Write(w.messages)
	if err != nil {
		w.logger.Error("error writing event batch: %v", err)
		return
	}
	w.messages = make([][]byte, 0) // clear the messages
}

func (w *Worker) Close() error {
	// drain batches
	w.wg.Wait()
	return w.writer.Close()
}
