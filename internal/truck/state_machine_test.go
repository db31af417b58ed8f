package truck

import (
	"testing"
	"time"
)

func TestCanTransitionRoleGating(t *testing.T) {
	if !CanTransition(RoleGate, StatusQueued) {
		t.Fatalf("expected gate -> queued allowed")
	}
	if CanTransition(RoleGate, StatusProcessing) {
		t.Fatalf("expected gate -> processing not allowed")
	}
	if !CanTransition(RoleReceiving, StatusProcessing) {
		t.Fatalf("expected receiving -> processing allowed")
	}
	// 倒退一步的更正也走同一张权限表
	if !CanTransition(RoleReceiving, StatusReceived) {
		t.Fatalf("expected receiving -> received allowed (closed reopen)")
	}
	if CanTransition(RoleCommercial, StatusQueued) {
		t.Fatalf("expected commercial to be read-only for transitions")
	}
	if CanTransition(RoleManagement, StatusClosed) {
		t.Fatalf("expected management to be read-only for transitions")
	}
	if !CanTransition(RoleAdmin, StatusScheduled) {
		t.Fatalf("expected admin to set any status")
	}
	if CanTransition(RoleSystem, StatusQueued) {
		t.Fatalf("expected system sentinel to have no transition rights")
	}
}

func TestApplyTransitionAppendsHistoryAndStamps(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	tr := &Truck{Status: StatusAtGate, LaneType: LaneDock, History: []HistoryEntry{
		{Status: StatusAtGate, ChangedAt: now.Add(-time.Hour), ChangedBy: "u-gate"},
	}}
	actor := Actor{UserID: "u-gate", Role: RoleGate}

	if err := ApplyTransition(tr, StatusQueued, actor, "llego al anden", now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if tr.Status != StatusQueued {
		t.Fatalf("expected status queued, got %s", tr.Status)
	}
	if len(tr.History) != 2 {
		t.Fatalf("expected history length 2, got %d", len(tr.History))
	}
	last := tr.History[len(tr.History)-1]
	if last.Status != tr.Status {
		t.Fatalf("history last status %s != truck status %s", last.Status, tr.Status)
	}
	if last.Note != "llego al anden" || last.Role != RoleGate {
		t.Fatalf("unexpected history entry: %+v", last)
	}
	if tr.CheckInDockAt == nil || !tr.CheckInDockAt.Equal(now) {
		t.Fatalf("expected dock check-in stamped at %v, got %v", now, tr.CheckInDockAt)
	}
	if tr.CheckInGateAt != nil {
		t.Fatalf("dock lane must not stamp gate check-in on queued")
	}
}

func TestApplyTransitionQuickLaneStampsGate(t *testing.T) {
	now := time.Now()
	tr := &Truck{Status: StatusAtGate, LaneType: LaneQuick}
	if err := ApplyTransition(tr, StatusQueued, Actor{UserID: "u", Role: RoleGate}, "", now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if tr.CheckInGateAt == nil {
		t.Fatalf("expected gate check-in stamped for quick lane")
	}
	if tr.CheckInDockAt != nil {
		t.Fatalf("quick lane must not stamp dock check-in")
	}
}

func TestMilestonesAreSetOnce(t *testing.T) {
	t0 := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(20 * time.Minute)
	tr := &Truck{Status: StatusQueued, LaneType: LaneDock}
	actor := Actor{UserID: "u-recv", Role: RoleReceiving}

	if err := ApplyTransition(tr, StatusProcessing, actor, "", t0); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	first := *tr.ProcessStartAt

	// 幂等重入：再次进入 processing 不得改写已有里程碑
	if err := ApplyTransition(tr, StatusProcessing, actor, "", t1); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if !tr.ProcessStartAt.Equal(first) {
		t.Fatalf("process start rewritten: %v -> %v", first, tr.ProcessStartAt)
	}
	if len(tr.History) != 2 {
		t.Fatalf("expected history length 2, got %d", len(tr.History))
	}
	if !tr.UpdatedAt.Equal(t1) {
		t.Fatalf("expected updated_at refreshed to %v, got %v", t1, tr.UpdatedAt)
	}

	// 倒退更正后再前进，同样不改写
	if err := ApplyTransition(tr, StatusStored, actor, "", t1); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	stored := *tr.StoredAt
	if err := ApplyTransition(tr, StatusProcessing, actor, "correccion", t1.Add(time.Minute)); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if err := ApplyTransition(tr, StatusStored, actor, "", t1.Add(2*time.Minute)); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if !tr.StoredAt.Equal(stored) {
		t.Fatalf("stored_at rewritten after reopen: %v -> %v", stored, tr.StoredAt)
	}
}

func TestParseRoleAliases(t *testing.T) {
	cases := map[string]Role{
		"gate":      RoleGate,
		"Porteria":  RoleGate,
		"recepcion": RoleReceiving,
		"gerencia":  RoleManagement,
		"ADMIN":     RoleAdmin,
		"whatever":  RoleSystem,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", in, got, want)
		}
	}
}
