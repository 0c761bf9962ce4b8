package messaging

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// Publisher 消息发布接口，由pkg/mq.Publisher实现
type Publisher interface {
	Exchange() string
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// AuditPublisher 先写审计存储，再把事件投递到消息队列
// 投递失败只记日志，不影响Record的结果
type AuditPublisher struct {
	next      audit.Log
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewAuditPublisher 包装审计存储
func NewAuditPublisher(next audit.Log, publisher Publisher, breaker *circuitbreaker.CircuitBreaker) *AuditPublisher {
	return &AuditPublisher{next: next, publisher: publisher, breaker: breaker}
}

// RoutingKey 路由键，如book.create
func RoutingKey(e *audit.Event) string {
	return "book." + string(e.Op)
}

// Record 事件落库成功后才发布
func (p *AuditPublisher) Record(ctx context.Context, e *audit.Event) error {
	if err := p.next.Record(ctx, e); err != nil {
		return err
	}

	key := RoutingKey(e)
	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(ctx, key, e)
	})
	metrics.IncPublished(p.publisher.Exchange(), key, err == nil)
	metrics.CircuitBreakerRequests.WithLabelValues(p.breaker.Name(), breakerResult(err)).Inc()

	if err != nil {
		logger.FromContext(ctx).Warn("audit event publish failed",
			zap.String("event_id", e.ID),
			zap.String("routing_key", key),
			zap.Error(err),
		)
	}
	return nil
}

// NewBreaker 创建发布用熔断器，状态写入circuit_breaker_state
func NewBreaker(name string) *circuitbreaker.CircuitBreaker {
	metrics.InitMetrics()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))
	return circuitbreaker.New(name, circuitbreaker.Config{
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

func breakerResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, circuitbreaker.ErrOpenState):
		return "rejected"
	default:
		return "failure"
	}
}

var _ audit.Log = (*AuditPublisher)(nil)
