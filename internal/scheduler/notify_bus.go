package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/biz/node"
)

const notifyChannel = "dcron:node-notify"

// NotifyEvent 通知已写入目标节点记录后发出的提醒, 收到后目标节点立即处理通知,
// 不必等下一次心跳. 节点记录仍是唯一的数据来源, 提醒丢失只会延迟处理.
type NotifyEvent struct {
	NodeID    string         `json:"node_id"`
	Cmd       node.NotifyCmd `json:"cmd"`
	TaskID    uint64         `json:"task_id,omitempty"`
	Source    string         `json:"source,omitempty"`
	Timestamp int64          `json:"ts,omitempty"`
}

// NotifyBus publishes notify nudges over Redis pub/sub. Without a Redis
// client it only reaches subscribers in the same process.
type NotifyBus struct {
	rdb    *redis.Client
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[string][]chan struct{}
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNotifyBus(rdb *redis.Client, logger *zap.Logger) *NotifyBus {
	return &NotifyBus{
		rdb:    rdb,
		logger: logger,
		subs:   make(map[string][]chan struct{}),
	}
}

func (b *NotifyBus) Publish(ctx context.Context, ev NotifyEvent) error {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	if b.rdb == nil {
		b.deliver(ev.NodeID)
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, notifyChannel, payload).Err()
}

// Subscribe returns a channel nudged whenever a notify for nodeID is
// published, and a func that removes the subscription.
func (b *NotifyBus) Subscribe(nodeID string) (<-chan struct{}, func()) {
	b.once.Do(b.listen)

	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[nodeID] = append(b.subs[nodeID], ch)
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[nodeID]
		for i, c := range subs {
			if c == ch {
				b.subs[nodeID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[nodeID]) == 0 {
			delete(b.subs, nodeID)
		}
	}
}

// Close stops the Redis listener.
func (b *NotifyBus) Close() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (b *NotifyBus) listen() {
	if b.rdb == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.mu.Lock()
	b.cancel, b.done = cancel, done
	b.mu.Unlock()

	pubsub := b.rdb.Subscribe(ctx, notifyChannel)
	go func() {
		defer close(done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev NotifyEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("invalid notify event", zap.Error(err))
					continue
				}
				b.deliver(ev.NodeID)
			}
		}
	}()
	b.logger.Info("notify bus subscribed", zap.String("channel", notifyChannel))
}

func (b *NotifyBus) deliver(nodeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[nodeID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
