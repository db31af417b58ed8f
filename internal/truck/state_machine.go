package truck

import (
	"fmt"
	"time"
)

// roleTargets 定义各角色允许把卡车置入的目标状态集合。
// 设计上故意不校验线性顺序：场内异常作业常见（例如跳过 processing 直接
// recepcion），唯一强约束是角色权限 + 里程碑时间“一次写入”。
// 倒退一步的更正（stored→processing、closed→received）同样由该表覆盖。
var roleTargets = map[Role][]Status{
	RoleGate: {StatusEnRoute, StatusAtGate, StatusQueued},
	RoleReceiving: {
		StatusQueued, StatusProcessing, StatusReceived,
		StatusStored, StatusClosed, StatusCompleted,
	},
	// commercial / management 对状态流转只读（仍可编辑明细字段）
	RoleCommercial: {},
	RoleManagement: {},
	RoleAdmin: {
		StatusScheduled, StatusEnRoute, StatusAtGate, StatusQueued,
		StatusProcessing, StatusReceived, StatusStored, StatusClosed,
		StatusCompleted,
	},
	RoleSystem: {},
}

// CanTransition 判断角色是否允许把卡车流转到目标状态。
func CanTransition(role Role, to Status) bool {
	allowed, ok := roleTargets[role]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对卡车应用状态变更：
// - 设置 status、刷新 UpdatedAt
// - 追加一条历史记录（新状态 + 时间 + 执行者 + 备注）
// - 若目标状态对应的里程碑时间仍为空则写入（一次写入，重入不覆盖）
// 校验（状态合法性、角色权限）由调用方 Service 先行完成。
func ApplyTransition(t *Truck, to Status, actor Actor, note string, now time.Time) error {
	if t == nil {
		return fmt.Errorf("truck is nil")
	}
	t.Status = to
	t.UpdatedAt = now
	t.History = append(t.History, HistoryEntry{
		Status:    to,
		ChangedAt: now,
		ChangedBy: actor.UserID,
		Role:      actor.Role,
		Note:      note,
	})
	stampMilestone(t, to, now)
	return nil
}

// stampMilestone 按目标状态写入对应的里程碑时间（仅当尚未写入）。
// queued 的里程碑取决于通道类型：月台通道记月台报到，快速通道记门岗报到。
func stampMilestone(t *Truck, to Status, now time.Time) {
	switch to {
	case StatusQueued:
		if t.LaneType == LaneDock {
			if t.CheckInDockAt == nil {
				v := now
				t.CheckInDockAt = &v
			}
		} else {
			if t.CheckInGateAt == nil {
				v := now
				t.CheckInGateAt = &v
			}
		}
	case StatusProcessing:
		if t.ProcessStartAt == nil {
			v := now
			t.ProcessStartAt = &v
		}
	case StatusReceived, StatusCompleted:
		if t.ProcessEndAt == nil {
			v := now
			t.ProcessEndAt = &v
		}
	case StatusStored:
		if t.StoredAt == nil {
			v := now
			t.StoredAt = &v
		}
	case StatusClosed:
		if t.ClosedAt == nil {
			v := now
			t.ClosedAt = &v
		}
	}
}
