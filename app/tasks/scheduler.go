package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veilletech/rss-engine/app/cfg"
	"github.com/veilletech/rss-engine/app/refresh"
	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/update"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler keeps each domain's collection warm: a ticker enqueues a refresh
// task for every domain whose refresh interval has elapsed, and a small worker
// pool executes them with capped-backoff retries.
type Scheduler struct {
	configCache   *sources.ConfigCache
	orchestrators map[update.Domain]*refresh.Orchestrator
	interval      time.Duration
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface

	mu          sync.Mutex
	lastRefresh map[update.Domain]time.Time
}

func NewScheduler(configCache *sources.ConfigCache,
	orchestrators map[update.Domain]*refresh.Orchestrator) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		configCache:   configCache,
		orchestrators: orchestrators,
		interval:      time.Duration(c.SchedulerInterval) * time.Second,
		workerCount:   c.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 100),
		lastRefresh:   make(map[update.Domain]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueDueTasks() {
	now := time.Now().UTC()

	for domain, orchestrator := range s.orchestrators {
		config, err := s.configCache.GetConfig(domain)
		if err != nil {
			slog.Warn("No source config for domain, skipping", "domain", domain, "error", err)
			continue
		}

		refreshInterval := time.Duration(config.Settings.RefreshInterval) * time.Second

		s.mu.Lock()
		last, refreshed := s.lastRefresh[domain]
		due := !refreshed || now.Sub(last) >= refreshInterval
		if due {
			s.lastRefresh[domain] = now
		}
		s.mu.Unlock()

		if !due {
			slog.Debug("Domain not due for refresh yet", "domain", domain, "last_refresh", last)
			continue
		}

		task := NewRefreshDomainTask(orchestrator)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue RefreshDomainTask", "domain", domain, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "domain", task.GetDomain(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
