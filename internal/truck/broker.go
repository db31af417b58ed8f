package truck

import (
	"sync"

	"github.com/google/uuid"
)

// SnapshotFunc 订阅回调：每次收到当前卡车集合的全量快照。
type SnapshotFunc func(trucks []Truck)

// Subscription 订阅句柄，Cancel 后不再收到任何推送。
type Subscription struct {
	id       string
	dockType DockType // "" 表示不过滤
	fn       SnapshotFunc
	broker   *Broker
	once     sync.Once
}

// Cancel 取消订阅，立即且永久生效。
func (s *Subscription) Cancel() {
	if s == nil || s.broker == nil {
		return
	}
	s.once.Do(func() {
		s.broker.remove(s.id)
	})
}

// Broker 快照扇出：
// - 订阅建立时同步推送一次初始全量快照
// - 每次被 Coordinator 接受的变更后，向所有存活订阅重推全量快照
//   （不做增量，也不判断本次变更是否命中过滤条件，宁可多推不漏推）
// 推送在变更路径上同步完成，回调方不得长时间阻塞。
type Broker struct {
	mu    sync.Mutex
	store *Store
	subs  map[string]*Subscription
}

func NewBroker(store *Store) *Broker {
	return &Broker{
		store: store,
		subs:  make(map[string]*Subscription),
	}
}

// Subscribe 建立订阅。dockType 为空串时接收全部卡车。
func (b *Broker) Subscribe(dockType DockType, fn SnapshotFunc) *Subscription {
	sub := &Subscription{
		id:       uuid.NewString(),
		dockType: dockType,
		fn:       fn,
		broker:   b,
	}
	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	// 初始推送
	if fn != nil {
		fn(b.snapshotFor(dockType))
	}
	return sub
}

// Publish 向所有存活订阅重推当前快照。由 Coordinator 在每次变更后调用。
// 订阅列表在锁外分发；每次分发前复查存活，保证 Cancel 返回后
// 即使本轮推送仍在进行也不再送达。
func (b *Broker) Publish() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		if s.fn == nil || !b.alive(s.id) {
			continue
		}
		s.fn(b.snapshotFor(s.dockType))
	}
}

func (b *Broker) alive(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[id]
	return ok
}

// SubscriberCount 当前存活订阅数。
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (b *Broker) snapshotFor(dockType DockType) []Truck {
	if dockType == "" {
		return b.store.List()
	}
	return b.store.ListByDockType(dockType)
}
