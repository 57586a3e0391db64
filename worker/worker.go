package worker

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Worker long running worker
type Worker interface {
	Run(ctx context.Context) error
}

// IJob cron driven job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob runs OnWork on a cron schedule, a run still in progress skips the next tick
type BaseJob struct {
	Cron    *cron.Cron
	OnWork  OnWork
	OnError func(err error)

	running int32
}

// NewBaseJob new job scheduled by spec, eg "@every 30s"
func NewBaseJob(spec string, onWork OnWork) (*BaseJob, error) {
	job := &BaseJob{
		Cron:   cron.New(),
		OnWork: onWork,
	}

	if _, err := job.Cron.AddJob(spec, job); err != nil {
		return nil, err
	}

	return job, nil
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

// IsRunning whether OnWork is in progress
func (job *BaseJob) IsRunning() bool {
	return atomic.LoadInt32(&job.running) == 1
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	if err := job.OnWork(); err != nil && job.OnError != nil {
		job.OnError(err)
	}
}

// RunJob start job and stop it once ctx is done
func RunJob(ctx context.Context, job IJob) error {
	if err := job.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	if err := job.Stop(); err != nil {
		return err
	}

	return ctx.Err()
}
