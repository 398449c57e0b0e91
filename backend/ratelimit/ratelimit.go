// Package ratelimit 为任意模型后端加上客户端限流。
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/favbox/limitchain/components/model"
	"github.com/favbox/limitchain/schema"
)

// Backend 限流装饰器，每次调用前在令牌桶上等待，再委托给内层后端。
//
// 扇出的链共享同一个 Backend 时，所有并发调用共同受限。
type Backend struct {
	inner   model.Backend
	limiter *rate.Limiter
}

var _ model.Backend = &Backend{}

// New 创建限流后端，limit 为每秒允许的调用次数，burst 为突发容量。
//
//	b := ratelimit.New(inner, rate.Limit(2), 4)
func New(inner model.Backend, limit rate.Limit, burst int) *Backend {
	if burst <= 0 {
		burst = 1
	}

	return &Backend{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Generate 等待令牌后调用内层后端，等待期间 ctx 结束则返回错误。
func (b *Backend) Generate(ctx context.Context, messages []schema.Message, opts ...model.Option) (*schema.Generation, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	return b.inner.Generate(ctx, messages, opts...)
}
