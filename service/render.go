package service

import (
	"context"
	"errors"
	"math"
	"runtime"

	"smritikosha/memory-api/model"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the render queue can't take another job.
// Handlers translate it to a 503
var ErrQueueFull = errors.New("render queue full")

// RenderResult is the output of one render: the finished video, an
// optional poster frame and the SHA-1 of the video bytes
type RenderResult struct {
	MP4             []byte
	Poster          []byte
	DurationSeconds float64
	Checksum        string
}

// Renderer produces a video from render parameters. Implemented by the
// ffmpeg queue below and by fakes in tests
type Renderer interface {
	Render(ctx context.Context, title string, params model.RenderParams) (*RenderResult, error)
}

type renderJob struct {
	ctx    context.Context
	title  string
	params model.RenderParams

	result *RenderResult
	done   chan error
}

// RenderQueue runs renders on a bounded worker pool so a burst of
// publish/download requests can't fork an unbounded number of ffmpeg
// processes
type RenderQueue struct {
	jobs    chan *renderJob
	threads int
}

var _ Renderer = (*RenderQueue)(nil)

// NewRenderQueue initializes a new render queue that limits the max
// amount of jobs that can be queued at once
func NewRenderQueue() *RenderQueue {
	return &RenderQueue{
		jobs:    make(chan *renderJob, viper.GetInt("render.max_jobs")),
		threads: getThreadsPerJob(viper.GetInt("render.workers")),
	}
}

// Figures out the amount of threads to use per ffmpeg job
func getThreadsPerJob(workers int) int {
	totalCores := runtime.NumCPU()
	threads := int(math.Floor(float64(totalCores) / float64(workers)))

	if threads < 1 {
		threads = 1
	}

	zap.L().Debug("Figured out amount of threads to use", zap.Int("t", threads))
	return threads
}

func (q *RenderQueue) StartWorkerPool() {
	for range viper.GetInt("render.workers") {
		go q.worker()
	}
}

func (q *RenderQueue) worker() {
	for job := range q.jobs {
		res, err := runRenderJob(job.ctx, job.title, job.params, q.threads)
		job.result = res
		job.done <- err
	}
}

// Render enqueues a job and waits for it. Returns ErrQueueFull without
// blocking when all slots are taken
func (q *RenderQueue) Render(ctx context.Context, title string, params model.RenderParams) (*RenderResult, error) {
	job := &renderJob{
		ctx:    ctx,
		title:  title,
		params: params,
		done:   make(chan error, 1),
	}

	select {
	case q.jobs <- job:
	default:
		return nil, ErrQueueFull
	}

	select {
	case err := <-job.done:
		if err != nil {
			return nil, err
		}
		return job.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
