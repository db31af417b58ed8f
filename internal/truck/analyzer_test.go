package truck

import (
	"testing"
	"time"
)

func TestMinutesBetween(t *testing.T) {
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	later := base.Add(31*time.Minute + 59*time.Second)

	if got := MinutesBetween(&base, &later); got != 31 {
		t.Fatalf("expected 31 floored minutes, got %d", got)
	}
	// 参考时刻早于起点：不为负
	if got := MinutesBetween(&later, &base); got != 0 {
		t.Fatalf("expected 0 for negative span, got %d", got)
	}
	if got := MinutesBetween(nil, &base); got != 0 {
		t.Fatalf("expected 0 for missing endpoint, got %d", got)
	}
	if got := MinutesBetween(&base, nil); got != 0 {
		t.Fatalf("expected 0 for missing endpoint, got %d", got)
	}
}

func queuedTruck(checkIn time.Time) Truck {
	v := checkIn
	return Truck{Status: StatusQueued, LaneType: LaneDock, CheckInDockAt: &v}
}

func TestDelayBoundaries(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		waited  time.Duration
		delayed bool
	}{
		{"29 minutes is not delayed", 29 * time.Minute, false},
		{"exactly 30 minutes is delayed", 30 * time.Minute, true},
		{"31 minutes is delayed", 31 * time.Minute, true},
	}
	for _, c := range cases {
		tr := queuedTruck(now.Add(-c.waited))
		if got := IsDelayed(&tr, now, DefaultDelayThreshold); got != c.delayed {
			t.Fatalf("%s: IsDelayed = %v", c.name, got)
		}
	}

	// 非排队状态不延误
	tr := queuedTruck(now.Add(-2 * time.Hour))
	tr.Status = StatusProcessing
	if IsDelayed(&tr, now, DefaultDelayThreshold) {
		t.Fatalf("non-queued truck must not be delayed")
	}

	// 无月台报到时退回门岗报到计时
	gateIn := now.Add(-45 * time.Minute)
	tr2 := Truck{Status: StatusQueued, LaneType: LaneQuick, CheckInGateAt: &gateIn}
	if !IsDelayed(&tr2, now, DefaultDelayThreshold) {
		t.Fatalf("expected gate check-in fallback to flag delay")
	}
}

func TestComputeDelayed(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	trucks := []Truck{
		queuedTruck(now.Add(-31 * time.Minute)),
		queuedTruck(now.Add(-10 * time.Minute)),
		queuedTruck(now.Add(-90 * time.Minute)),
	}
	delayed := ComputeDelayed(trucks, now, 0) // 0 -> 默认阈值
	if len(delayed) != 2 {
		t.Fatalf("expected 2 delayed trucks, got %d", len(delayed))
	}
}

func TestComputeDockOccupancy(t *testing.T) {
	closedTruck := Truck{Status: StatusClosed, DockType: DockReceiving, DockNumber: "3"}
	trucks := []Truck{closedTruck}

	occ := ComputeDockOccupancy(trucks, DockReceiving, "3")
	if occ.Occupied {
		t.Fatalf("dock with only a closed truck must not be occupied")
	}

	trucks = append(trucks, Truck{Status: StatusQueued, DockType: DockReceiving, DockNumber: "3"})
	occ = ComputeDockOccupancy(trucks, DockReceiving, "3")
	if !occ.Occupied {
		t.Fatalf("expected dock occupied with queued truck present")
	}
	if occ.Waiting != 1 {
		t.Fatalf("expected waiting count 1, got %d", occ.Waiting)
	}

	// 预到场状态不计入占用
	trucks = []Truck{{Status: StatusEnRoute, DockType: DockReceiving, DockNumber: "5"}}
	occ = ComputeDockOccupancy(trucks, DockReceiving, "5")
	if occ.Occupied || occ.Count != 0 {
		t.Fatalf("pre-arrival statuses must not occupy docks: %+v", occ)
	}

	// 其他分区不串台
	trucks = []Truck{{Status: StatusQueued, DockType: DockDispatch, DockNumber: "3"}}
	occ = ComputeDockOccupancy(trucks, DockReceiving, "3")
	if occ.Occupied {
		t.Fatalf("dispatch truck must not occupy a receiving dock")
	}
}

func TestComputeOccupancySummary(t *testing.T) {
	now := time.Now()
	trucks := []Truck{
		queuedTruck(now),
	}
	trucks[0].DockType = DockReceiving
	trucks[0].DockNumber = "2"

	summary := ComputeOccupancySummary(trucks, DockReceiving, 9)
	if len(summary) != 9 {
		t.Fatalf("expected 9 docks in summary, got %d", len(summary))
	}
	if !summary[1].Occupied || summary[1].Dock != "2" {
		t.Fatalf("expected dock 2 occupied: %+v", summary[1])
	}
	if summary[0].Occupied {
		t.Fatalf("expected dock 1 free")
	}
}

func TestOnTimeRate(t *testing.T) {
	sched := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	onTime := sched.Add(-5 * time.Minute)
	exact := sched
	late := sched.Add(20 * time.Minute)

	trucks := []Truck{
		{ScheduledArrival: sched, CheckInDockAt: &onTime},
		{ScheduledArrival: sched, CheckInDockAt: &exact}, // 恰好准点也算准时
		{ScheduledArrival: sched, CheckInDockAt: &late},
		{ScheduledArrival: sched}, // 未报到不计入
	}
	got := OnTimeRate(trucks)
	want := 2.0 / 3.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("OnTimeRate = %v, want %v", got, want)
	}
	if OnTimeRate(nil) != 0 {
		t.Fatalf("expected 0 rate for empty set")
	}
}

func TestAverageGateToDockMinutes(t *testing.T) {
	gate1 := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	dock1 := gate1.Add(20 * time.Minute)
	gate2 := gate1.Add(time.Hour)
	dock2 := gate2.Add(40 * time.Minute)

	trucks := []Truck{
		{CheckInGateAt: &gate1, CheckInDockAt: &dock1},
		{CheckInGateAt: &gate2, CheckInDockAt: &dock2},
		{CheckInGateAt: &gate1}, // 缺月台报到不计入
	}
	if got := AverageGateToDockMinutes(trucks); got != 30 {
		t.Fatalf("expected average 30 minutes, got %d", got)
	}
}
