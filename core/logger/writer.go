package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// op is one queued unit of work: a log line, or a flush request when ack
// is set.
type op struct {
	line []byte
	ack  chan error
}

// asyncWriter moves sink IO off the handler path. One goroutine owns the
// sinks; Write only enqueues. The first sink error sticks and is
// returned by every later call.
type asyncWriter struct {
	ops   chan op
	done  chan struct{}
	once  sync.Once
	sinks []*bufio.Writer

	mu  sync.Mutex
	err error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		ops:  make(chan op, 256),
		done: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for o := range w.ops {
		if o.ack != nil {
			o.ack <- w.flush()
			continue
		}
		w.fail(w.emit(o.line))
	}
	w.fail(w.flush())
}

// Write queues a copy of p. It blocks while the queue is full so lines
// are never dropped.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.failed(); err != nil || len(p) == 0 {
		return err
	}
	w.ops <- op{line: append([]byte(nil), p...)}
	return nil
}

// Flush returns once every line queued before it reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.failed(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.ops <- op{ack: ack}
	return <-ack
}

// Close drains the queue and stops the writer goroutine.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.ops) })
	<-w.done
	return w.failed()
}

func (w *asyncWriter) emit(line []byte) error {
	for _, s := range w.sinks {
		if _, err := s.Write(line); err != nil {
			return err
		}
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) failed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
