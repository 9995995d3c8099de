package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrQueueFull = errors.New("provisioning queue full")

// Job asks a worker to provision one candidate. Done, when set, receives
// exactly one outcome.
type Job struct {
	Candidate Candidate
	Done      chan<- Outcome
}

type Outcome struct {
	Result Result
	Err    error
}

type worker struct {
	id      int
	pool    chan chan Job
	jobs    chan Job
	logger  *slog.Logger
	process func(context.Context, Job)
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case w.pool <- w.jobs:
			case <-ctx.Done():
				return
			}

			select {
			case job := <-w.jobs:
				w.logger.Debug("worker processing job", "worker_id", w.id, "personnel_id", job.Candidate.PersonnelID)
				w.process(ctx, job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type PoolConfig struct {
	Workers   int
	QueueSize int
}

// Pool runs provisioning off the request path on a fixed number of workers
// fed from a bounded queue.
type Pool struct {
	provisioner *Provisioner
	logger      *slog.Logger

	queue   chan Job
	workers chan chan Job
	size    int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	pending sync.WaitGroup
}

func NewPool(provisioner *Provisioner, cfg PoolConfig, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		provisioner: provisioner,
		logger:      logger,
		queue:       make(chan Job, cfg.QueueSize),
		workers:     make(chan chan Job, cfg.Workers),
		size:        cfg.Workers,
		ctx:         ctx,
		cancel:      cancel,
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.size; i++ {
			w := &worker{id: i, pool: p.workers, jobs: make(chan Job), logger: p.logger, process: p.process}
			w.start(p.ctx, &p.wg)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("provisioning worker pool started",
			"workers", p.size,
			"queue_size", cap(p.queue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.queue:
			select {
			case jobs := <-p.workers:
				select {
				case jobs <- job:
				case <-p.ctx.Done():
					p.abandon(job)
					return
				}
			case <-p.ctx.Done():
				p.abandon(job)
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	defer p.pending.Done()
	result, err := p.provisioner.Provision(ctx, job.Candidate)
	if err != nil {
		p.logger.Warn("account provisioning failed",
			"personnel_id", job.Candidate.PersonnelID,
			"error", err)
	}
	if job.Done != nil {
		job.Done <- Outcome{Result: result, Err: err}
		return
	}
	if result.Outcome == OutcomeCreated {
		p.logger.Info("account provisioned with credential pending; issue one through password reset",
			"personnel_id", job.Candidate.PersonnelID,
			"account_id", result.AccountID,
			"username", result.Username)
	}
}

func (p *Pool) abandon(job Job) {
	defer p.pending.Done()
	if job.Done != nil {
		job.Done <- Outcome{Err: context.Canceled}
	}
}

// Submit queues a job without waiting. A full queue fails fast.
func (p *Pool) Submit(job Job) error {
	if p.ctx.Err() != nil {
		return context.Canceled
	}
	p.pending.Add(1)
	select {
	case p.queue <- job:
		return nil
	default:
		p.pending.Done()
		return ErrQueueFull
	}
}

// Do queues a job and waits for its outcome, blocking while the queue is full.
func (p *Pool) Do(ctx context.Context, c Candidate) (Result, error) {
	done := make(chan Outcome, 1)
	p.pending.Add(1)
	select {
	case p.queue <- Job{Candidate: c, Done: done}:
	case <-ctx.Done():
		p.pending.Done()
		return Result{}, ctx.Err()
	case <-p.ctx.Done():
		p.pending.Done()
		return Result{}, context.Canceled
	}

	select {
	case out := <-done:
		return out.Result, out.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Drain waits until every queued job has been processed.
func (p *Pool) Drain() {
	p.pending.Wait()
}

func (p *Pool) Shutdown() {
	p.logger.Info("shutting down provisioning pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("provisioning pool shutdown complete")
}

// Backlog reports queued jobs against the queue capacity.
func (p *Pool) Backlog() (queued, capacity int) {
	return len(p.queue), cap(p.queue)
}
