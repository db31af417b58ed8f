package truck

import (
	"context"
	"fmt"

	"github.com/YardLink/YardLink/internal/common/middleware"
)

// Persistence 持久化协作方边界。
// 核心在内存中先行生效，再通知持久化方落盘；落盘失败以
// ErrPersistenceFailed 上抛，不回滚内存变更（见 errors.go 说明）。
// 内存表示到存储格式的转换（时间/枚举）由实现方负责。
type Persistence interface {
	// Load 启动时加载全量卡车。
	Load(ctx context.Context) ([]Truck, error)
	// Save 新建或覆盖一条记录。
	Save(ctx context.Context, t *Truck) error
	// Delete 删除一条记录，不存在时不报错。
	Delete(ctx context.Context, id string) error
}

// GuardedPersistence 给持久化写入套一层熔断器：
// 持久化方持续失败时快速失败，避免每次变更都等待超时。
// Load 不过熔断器（只在启动时调用一次）。
type GuardedPersistence struct {
	inner   Persistence
	breaker *middleware.CircuitBreaker
}

func NewGuardedPersistence(inner Persistence, breaker *middleware.CircuitBreaker) *GuardedPersistence {
	return &GuardedPersistence{inner: inner, breaker: breaker}
}

func (g *GuardedPersistence) Load(ctx context.Context) ([]Truck, error) {
	if g == nil || g.inner == nil {
		return nil, fmt.Errorf("persistence is nil")
	}
	return g.inner.Load(ctx)
}

func (g *GuardedPersistence) Save(ctx context.Context, t *Truck) error {
	if g == nil || g.inner == nil {
		return fmt.Errorf("persistence is nil")
	}
	if g.breaker == nil {
		return g.inner.Save(ctx, t)
	}
	return g.breaker.Call(ctx, func() error {
		return g.inner.Save(ctx, t)
	})
}

func (g *GuardedPersistence) Delete(ctx context.Context, id string) error {
	if g == nil || g.inner == nil {
		return fmt.Errorf("persistence is nil")
	}
	if g.breaker == nil {
		return g.inner.Delete(ctx, id)
	}
	return g.breaker.Call(ctx, func() error {
		return g.inner.Delete(ctx, id)
	})
}
