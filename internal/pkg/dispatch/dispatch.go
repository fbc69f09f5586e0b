// Package dispatch 后台任务执行，基于 ants 协程池
package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"k8s.io/klog/v2"
)

var ErrPoolClosed = errors.New("dispatch pool is closed")

// Dispatcher 异步执行函数，不等待结果
type Dispatcher interface {
	Submit(task func()) error
}

// Pool 以 ants 协程池实现的 Dispatcher
type Pool struct {
	pool *ants.Pool
}

// NewPool 创建协程池，size <= 0 时使用 1
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	p, err := ants.NewPool(size,
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(1000),
		ants.WithExpiryDuration(10*time.Second),
		ants.WithPanicHandler(func(v any) {
			klog.Errorf("后台任务 panic: %v", v)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	klog.V(6).Infof("后台任务池已创建: size=%d", size)
	return &Pool{pool: p}, nil
}

// Submit 提交任务
func (p *Pool) Submit(task func()) error {
	if err := p.pool.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return fmt.Errorf("submit task: %w", err)
	}
	return nil
}

// Running 正在运行的任务数
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release 等待运行中的任务结束后释放协程池
func (p *Pool) Release(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}

// Inline 在调用方协程中同步执行任务
type Inline struct{}

func (Inline) Submit(task func()) error {
	task()
	return nil
}
