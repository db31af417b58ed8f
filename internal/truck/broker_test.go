package truck

import (
	"context"
	"testing"
	"time"
)

func TestBrokerInitialSnapshotAndRedelivery(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var snapshots [][]Truck
	sub := svc.broker.Subscribe("", func(trucks []Truck) {
		snapshots = append(snapshots, trucks)
	})
	defer sub.Cancel()

	// 订阅建立即收到初始快照（可能为空）
	if len(snapshots) != 1 {
		t.Fatalf("expected initial snapshot, got %d deliveries", len(snapshots))
	}
	initial := len(snapshots[0])

	if _, err := svc.CreateTruck(ctx, validInput(), gateActor); err != nil {
		t.Fatalf("CreateTruck: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected redelivery after create, got %d deliveries", len(snapshots))
	}
	if len(snapshots[1]) != initial+1 {
		t.Fatalf("expected snapshot count %d, got %d", initial+1, len(snapshots[1]))
	}
}

func TestBrokerDockTypeFilter(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var last []Truck
	sub := svc.broker.Subscribe(DockDispatch, func(trucks []Truck) { last = trucks })
	defer sub.Cancel()

	if _, err := svc.CreateTruck(ctx, validInput(), gateActor); err != nil { // receiving
		t.Fatalf("CreateTruck: %v", err)
	}
	if len(last) != 0 {
		t.Fatalf("dispatch subscription must not see receiving trucks, got %d", len(last))
	}

	in := validInput()
	in.Plate = "ZZTT12"
	in.DockType = DockDispatch
	if _, err := svc.CreateTruck(ctx, in, gateActor); err != nil {
		t.Fatalf("CreateTruck dispatch: %v", err)
	}
	if len(last) != 1 || last[0].DockType != DockDispatch {
		t.Fatalf("expected filtered snapshot with 1 dispatch truck, got %+v", last)
	}
}

func TestBrokerCancelStopsDeliveries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	deliveries := 0
	sub := svc.broker.Subscribe("", func([]Truck) { deliveries++ })
	if svc.broker.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber")
	}

	sub.Cancel()
	sub.Cancel() // 重复取消幂等
	if svc.broker.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after cancel")
	}

	before := deliveries
	if _, err := svc.CreateTruck(ctx, validInput(), gateActor); err != nil {
		t.Fatalf("CreateTruck: %v", err)
	}
	if deliveries != before {
		t.Fatalf("cancelled subscription still received deliveries")
	}
}

// Cancel 返回后即使同一轮推送仍在分发，也不得再收到快照。
// 两个订阅的分发顺序不确定，因此记录事件序列：无论哪个先跑，
// "deliver" 都不允许出现在 "cancel" 之后。
func TestBrokerCancelDuringPublish(t *testing.T) {
	for i := 0; i < 20; i++ {
		b := NewBroker(NewStore())

		var events []string
		var subB *Subscription
		subA := b.Subscribe("", func([]Truck) {
			if subB != nil {
				events = append(events, "cancel")
				subB.Cancel()
			}
		})
		subB = b.Subscribe("", func([]Truck) {
			events = append(events, "deliver")
		})

		// 丢弃订阅建立期间的初始推送事件，只观察下一轮 Publish
		events = nil
		b.Publish()

		cancelIdx, deliverIdx := -1, -1
		for j, e := range events {
			switch e {
			case "cancel":
				cancelIdx = j
			case "deliver":
				deliverIdx = j
			}
		}
		if cancelIdx >= 0 && deliverIdx > cancelIdx {
			t.Fatalf("delivery after cancel returned: %v", events)
		}

		subA.Cancel()
		subB.Cancel()
	}
}

// 订阅方看到的快照必须与存储隔离：改动快照不影响权威状态。
func TestBrokerSnapshotsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tr, err := svc.CreateTruck(ctx, validInput(), gateActor)
	if err != nil {
		t.Fatalf("CreateTruck: %v", err)
	}

	var captured []Truck
	sub := svc.broker.Subscribe("", func(trucks []Truck) { captured = trucks })
	defer sub.Cancel()

	captured[0].Plate = "HACKED"
	captured[0].History = append(captured[0].History, HistoryEntry{Status: StatusClosed, ChangedAt: time.Now()})

	cur, _ := svc.GetTruck(tr.ID)
	if cur.Plate != "ABC123" || len(cur.History) != 1 {
		t.Fatalf("snapshot mutation leaked into store: %+v", cur)
	}
}
