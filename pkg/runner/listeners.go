package runner

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/avi3tal/functionsagent/pkg/node"
)

// StreamListener yields one single-item batch per JSON line of a stream.
// A read failure is returned once, after which the listener reports io.EOF.
type StreamListener struct {
	reader io.Reader
	once   sync.Once
	lines  chan []byte
	done   chan struct{}
	exited chan struct{}
	stop   sync.Once

	// err is written by read before lines is closed.
	err      error
	mu       sync.Mutex
	reported bool
}

func NewStreamListener(r io.Reader) *StreamListener {
	return &StreamListener{
		reader: r,
		lines:  make(chan []byte),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (l *StreamListener) WaitForEvent(ctx context.Context) ([]node.Item, error) {
	l.once.Do(func() { go l.read() })

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case line, ok := <-l.lines:
			if !ok {
				return nil, l.terminal()
			}
			item, ok, err := node.DecodeLine(line)
			if err != nil {
				return nil, err
			}
			if ok {
				return []node.Item{item}, nil
			}
		}
	}
}

// Close stops the reader goroutine once it next hands over a line.
func (l *StreamListener) Close() error {
	l.stop.Do(func() { close(l.done) })
	return nil
}

func (l *StreamListener) terminal() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil && !l.reported {
		l.reported = true
		return l.err
	}
	return io.EOF
}

func (l *StreamListener) read() {
	defer close(l.exited)
	defer close(l.lines)
	scanner := bufio.NewScanner(l.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case l.lines <- line:
		case <-l.done:
			return
		}
	}
	l.err = errors.Wrap(scanner.Err(), "read stream")
}

// CronListener yields the same batch every time its schedule fires.
type CronListener struct {
	cron  *cron.Cron
	items []node.Item
	ticks chan struct{}
	once  sync.Once
}

// NewCronListener schedules the batch with a standard cron expression or a
// descriptor such as "@every 1m".
func NewCronListener(schedule string, items []node.Item) (*CronListener, error) {
	l := &CronListener{
		cron:  cron.New(),
		items: items,
		ticks: make(chan struct{}, 1),
	}
	if _, err := l.cron.AddFunc(schedule, l.fire); err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", schedule)
	}
	return l, nil
}

// fire drops the tick when the previous one has not been consumed yet.
func (l *CronListener) fire() {
	select {
	case l.ticks <- struct{}{}:
	default:
	}
}

func (l *CronListener) WaitForEvent(ctx context.Context) ([]node.Item, error) {
	l.once.Do(l.cron.Start)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.ticks:
		return append([]node.Item(nil), l.items...), nil
	}
}

// Stop stops the schedule; running jobs are not waited for.
func (l *CronListener) Stop() {
	l.cron.Stop()
}
