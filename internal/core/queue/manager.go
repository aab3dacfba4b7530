package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Job 在工作者中執行的任務
type Job func(ctx context.Context) error

// Request 隊列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 固定數量工作者的有界隊列
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *Request
	done      chan struct{}
	processed atomic.Int64
	wg        sync.WaitGroup

	// mu 讓 Enqueue 的送出與 Close 互斥，關閉後不會再有任務進入隊列
	mu     sync.RWMutex
	closed bool
}

// NewManager 創建隊列並啟動工作者
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize < 1 {
		maxSize = 1
	}

	m := &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("隊列管理器已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

// Enqueue 將任務加入隊列，隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, job Job) (<-chan error, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan error, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		common.LogWarn("隊列已滿", zap.Int("max_queue_size", m.maxSize))
		return nil, common.ErrQueueFull
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case req := <-m.queue:
			m.run(id, req)
		case <-m.done:
			// 關閉後仍處理已排入的任務
			for {
				select {
				case req := <-m.queue:
					m.run(id, req)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) run(id int, req *Request) {
	if err := req.Context.Err(); err != nil {
		req.Result <- err
		return
	}

	err := req.Job(req.Context)
	m.processed.Add(1)
	if err != nil {
		common.LogDebug("任務執行失敗", zap.Int("worker", id), zap.Error(err))
	}
	req.Result <- err
}

// Wait 等待所有結果，回傳第一個錯誤
func Wait(ctx context.Context, results []<-chan error) error {
	var first error
	for _, ch := range results {
		select {
		case err := <-ch:
			if err != nil && first == nil {
				first = err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return first
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() Status {
	return Status{
		QueueLength:    len(m.queue),
		ProcessedCount: m.processed.Load(),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止接收任務並等待工作者結束
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
