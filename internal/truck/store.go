package truck

import (
	"sort"
	"sync"
)

// Store 场内卡车的权威内存集合。
// 所有变更（创建/流转/明细更新/删除）在写锁内完成，保证同一卡车的
// 读-改-写不会与其他变更交错；读侧返回深拷贝快照，不阻塞变更。
type Store struct {
	mu     sync.RWMutex
	trucks map[string]*Truck
}

func NewStore() *Store {
	return &Store{trucks: make(map[string]*Truck)}
}

// ReplaceAll 用持久化协作方 Load 的结果整体替换集合（服务启动时调用）。
func (s *Store) ReplaceAll(trucks []Truck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trucks = make(map[string]*Truck, len(trucks))
	for i := range trucks {
		t := trucks[i].Clone()
		s.trucks[t.ID] = &t
	}
}

// Get 返回指定卡车的快照。
func (s *Store) Get(id string) (Truck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trucks[id]
	if !ok {
		return Truck{}, false
	}
	return t.Clone(), true
}

// List 返回全部卡车的快照，按创建时间倒序（新建在前，同面板展示顺序）。
func (s *Store) List() []Truck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Truck, 0, len(s.trucks))
	for _, t := range s.trucks {
		out = append(out, t.Clone())
	}
	sortByCreatedDesc(out)
	return out
}

// ListByDockType 返回指定月台分区的卡车快照。
func (s *Store) ListByDockType(dt DockType) []Truck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Truck, 0, len(s.trucks))
	for _, t := range s.trucks {
		if t.DockType == dt {
			out = append(out, t.Clone())
		}
	}
	sortByCreatedDesc(out)
	return out
}

// Len 当前卡车数量。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trucks)
}

// Insert 写入一辆新卡车（ID 冲突时覆盖，由调用方保证 ID 唯一）。
func (s *Store) Insert(t Truck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := t.Clone()
	s.trucks[c.ID] = &c
}

// Update 在写锁内对指定卡车执行 mutate（读-改-写原子区）。
// mutate 返回错误时不提交任何修改；成功时返回更新后的快照。
func (s *Store) Update(id string, mutate func(*Truck) error) (Truck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trucks[id]
	if !ok {
		return Truck{}, ErrNotFound
	}
	// 先在副本上执行，失败不影响集合内的记录
	c := t.Clone()
	if err := mutate(&c); err != nil {
		return Truck{}, err
	}
	s.trucks[id] = &c
	return c.Clone(), nil
}

// Delete 硬删除，无墓碑。返回是否存在。
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trucks[id]; !ok {
		return false
	}
	delete(s.trucks, id)
	return true
}

func sortByCreatedDesc(trucks []Truck) {
	sort.SliceStable(trucks, func(i, j int) bool {
		return trucks[i].CreatedAt.After(trucks[j].CreatedAt)
	})
}
