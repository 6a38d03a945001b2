package settle

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// FrameSource reports paint opportunities of a rendering pipeline. NextFrame
// returns once the pipeline has painted a frame that started after the call.
type FrameSource interface {
	NextFrame(ctx context.Context) error
}

type FrameFunc func(ctx context.Context) error

func (f FrameFunc) NextFrame(ctx context.Context) error {
	return f(ctx)
}

// DefaultFrameDelay approximates one 60Hz frame.
const DefaultFrameDelay = 16 * time.Millisecond

// DelayFrames stands in for a frame source when the host has none. Each
// "frame" is just a fixed sleep, so samples taken with it are degraded.
type DelayFrames struct {
	Clock clock.Clock
	Delay time.Duration
}

func (d DelayFrames) NextFrame(ctx context.Context) error {
	c := d.Clock
	if c == nil {
		c = clock.New()
	}
	delay := d.Delay
	if delay <= 0 {
		delay = DefaultFrameDelay
	}
	return Sleep(ctx, c, delay)
}

// Sleep waits for d on c or until ctx is done.
func Sleep(ctx context.Context, c clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-c.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClockFrames is a vsync-style frame clock. Every tick it runs Paint and then
// releases everything waiting in NextFrame.
type ClockFrames struct {
	clock    clock.Clock
	interval time.Duration
	paint    func()

	mu      sync.Mutex
	waiters chan struct{}
	frames  int64
	stop    chan struct{}
	done    chan struct{}
}

func NewClockFrames(c clock.Clock, fps int, paint func()) *ClockFrames {
	if c == nil {
		c = clock.New()
	}
	if fps <= 0 {
		fps = 60
	}
	return &ClockFrames{
		clock:    c,
		interval: time.Second / time.Duration(fps),
		paint:    paint,
		waiters:  make(chan struct{}),
	}
}

func (f *ClockFrames) Interval() time.Duration {
	return f.interval
}

// Start launches the frame loop. Calling Start on a running loop is a no-op.
func (f *ClockFrames) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop != nil {
		return
	}
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	ticker := f.clock.Ticker(f.interval)
	go f.loop(ticker, f.stop, f.done)
}

func (f *ClockFrames) loop(ticker *clock.Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if f.paint != nil {
				f.paint()
			}
			f.mu.Lock()
			f.frames++
			close(f.waiters)
			f.waiters = make(chan struct{})
			f.mu.Unlock()
		}
	}
}

// Stop halts the frame loop and waits for it to exit.
func (f *ClockFrames) Stop() {
	f.mu.Lock()
	stop, done := f.stop, f.done
	f.stop, f.done = nil, nil
	f.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Frames returns how many frames have been painted.
func (f *ClockFrames) Frames() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

func (f *ClockFrames) NextFrame(ctx context.Context) error {
	f.mu.Lock()
	if f.stop == nil {
		f.mu.Unlock()
		return ErrFramesStopped
	}
	wait, stopped := f.waiters, f.stop
	f.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-stopped:
		return ErrFramesStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
