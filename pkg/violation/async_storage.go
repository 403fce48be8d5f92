package violation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// asyncStorage decorates a Storage with a buffered background writer so the
// hot path never waits on the violation sink. A full buffer degrades to a
// synchronous write instead of dropping the record: a violation is security
// evidence and must reach storage even under load.
type asyncStorage struct {
	next    Storage
	ch      chan Record
	done    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration
	logger  *slog.Logger
	closed  sync.Once
}

// NewAsyncStorage wraps next with a buffered writer.
// bufferSize bounds in-flight records; storeTimeout bounds each background
// write. Close must be called to flush the buffer on shutdown.
func NewAsyncStorage(next Storage, bufferSize int, storeTimeout time.Duration, logger *slog.Logger) *asyncStorage {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &asyncStorage{
		next:    next,
		ch:      make(chan Record, bufferSize),
		done:    make(chan struct{}),
		timeout: storeTimeout,
		logger:  logger,
	}

	s.wg.Add(1)
	go s.drain()

	return s
}

func (s *asyncStorage) Store(ctx context.Context, record Record) error {
	select {
	case s.ch <- record:
		return nil
	default:
		// Buffer overflow: store synchronously rather than drop.
		if err := s.next.Store(ctx, record); err != nil {
			return err
		}
		return ErrBufferFull
	}
}

func (s *asyncStorage) Query(ctx context.Context, criteria Criteria) ([]Record, error) {
	return s.next.Query(ctx, criteria)
}

// Close flushes buffered records and stops the background writer.
func (s *asyncStorage) Close() error {
	s.closed.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *asyncStorage) drain() {
	defer s.wg.Done()

	for {
		select {
		case record := <-s.ch:
			s.store(record)
		case <-s.done:
			// Flush whatever is still buffered.
			for {
				select {
				case record := <-s.ch:
					s.store(record)
				default:
					return
				}
			}
		}
	}
}

func (s *asyncStorage) store(record Record) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.next.Store(ctx, record); err != nil {
		s.logger.Error("violation record write failed",
			slog.String("record_id", record.ID.String()),
			slog.String("kind", string(record.Kind)),
			slog.String("error", err.Error()))
	}
}
