package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"fontspector/internal/checkapi"
)

type progress interface {
	Add(n int) error
	Finish() error
}

type noopProgress struct{}

func (noopProgress) Add(int) error { return nil }
func (noopProgress) Finish() error { return nil }

func newProgress(w io.Writer, total int) progress {
	if w == nil {
		return noopProgress{}
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Checking"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

type Scheduler struct {
	jobs     int
	progress io.Writer
	newBar   func(w io.Writer, total int) progress
}

// NewScheduler runs at most jobs checks at once. A non-nil progressOut gets
// a progress bar.
func NewScheduler(jobs int, progressOut io.Writer) (*Scheduler, error) {
	if jobs <= 0 {
		return nil, fmt.Errorf("jobs must be >= 1, got %d", jobs)
	}
	return &Scheduler{jobs: jobs, progress: progressOut, newBar: newProgress}, nil
}

// Execute runs every plan item and returns their results in plan order.
// Items whose check does not fit the target produce no result.
//
// With one job the items run sequentially on the calling goroutine. On
// cancellation the results gathered so far are returned with ctx's error.
func (s *Scheduler) Execute(ctx context.Context, items []checkapi.PlanItem) ([]*checkapi.CheckResult, error) {
	if ctx == nil {
		return nil, errors.New("context is nil")
	}
	if s == nil {
		return nil, errors.New("scheduler is nil")
	}

	bar := s.newBar(s.progress, len(items))
	defer bar.Finish()

	slots := make([]*checkapi.CheckResult, len(items))
	run := func(i int) {
		it := items[i]
		slots[i] = it.Check.Run(it.Testable, it.Context, it.Section)
		_ = bar.Add(1)
	}

	var err error
	if s.jobs == 1 {
		for i := range items {
			if err = ctx.Err(); err != nil {
				break
			}
			run(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.jobs)
		for i := range items {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				run(i)
				return nil
			})
		}
		err = g.Wait()
		if err == nil {
			err = ctx.Err()
		}
	}

	results := make([]*checkapi.CheckResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	return results, err
}
