package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"truckmonitor/internal/model"
)

var (
	// ErrTooManyReadErrors ends a run whose source keeps failing.
	ErrTooManyReadErrors = errors.New("too many consecutive frame read errors")

	// ErrAlreadyRunning and ErrNotRunning are returned by run controllers.
	ErrAlreadyRunning = errors.New("pipeline is already running")
	ErrNotRunning     = errors.New("pipeline is not running")
)

// FrameSource yields frames until it returns io.EOF.
// Next may block, e.g. while waiting on a camera.
type FrameSource interface {
	Next() (model.Frame, error)
	Close() error
}

// Run processes frames from source sequentially until the source ends, ctx is
// cancelled, or the store fails. Cancellation is checked between frames only;
// a frame in flight always completes. A cancelled run returns nil.
func (p *Pipeline) Run(ctx context.Context, source FrameSource) error {
	p.metrics.SetRunning(true)
	defer p.metrics.SetRunning(false)

	p.logger.Info("Pipeline %s started (every %d frame(s))", p.runID, p.interval)

	read := 0
	readErrors := 0
	for {
		if ctx.Err() != nil {
			p.logger.Info("Pipeline %s stopped after %d frame(s)", p.runID, read)
			return nil
		}

		frame, err := source.Next()
		if errors.Is(err, io.EOF) {
			p.logger.Info("Pipeline %s reached end of stream after %d frame(s)", p.runID, read)
			return nil
		}
		if err != nil {
			p.metrics.ReadErrors.Add(1)
			readErrors++
			p.logger.Warning("Unreadable frame: %v", err)
			if readErrors >= p.maxReadErrors {
				return fmt.Errorf("%w: %v", ErrTooManyReadErrors, err)
			}
			continue
		}
		readErrors = 0
		read++
		p.framesRead.Add(1)
		p.metrics.FramesRead.Add(1)

		if read%p.interval != 0 {
			p.metrics.FramesSkipped.Add(1)
			closeFrame(frame)
			continue
		}

		_, err = p.ProcessFrame(frame)
		closeFrame(frame)
		if err != nil {
			p.logger.Error("Pipeline %s: %v", p.runID, err)
			return err
		}
	}
}

func closeFrame(frame model.Frame) {
	if c, ok := frame.(io.Closer); ok {
		c.Close()
	}
}
