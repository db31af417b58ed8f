package truck

import (
	"strings"
	"time"
)

// Status 卡车生命周期状态枚举（持久化为字符串）。
type Status string

const (
	StatusScheduled  Status = "scheduled"  // 已预约，未出发
	StatusEnRoute    Status = "en_route"   // 在途
	StatusAtGate     Status = "at_gate"    // 到达门岗
	StatusQueued     Status = "queued"     // 排队等待月台
	StatusProcessing Status = "processing" // 装卸作业中
	StatusReceived   Status = "received"   // 收货完成
	StatusStored     Status = "stored"     // 已入库
	StatusClosed     Status = "closed"     // 已关单
	StatusCompleted  Status = "completed"  // 终态（只读历史视图使用）
)

// validStatuses 所有可识别状态的集合。
var validStatuses = map[Status]struct{}{
	StatusScheduled:  {},
	StatusEnRoute:    {},
	StatusAtGate:     {},
	StatusQueued:     {},
	StatusProcessing: {},
	StatusReceived:   {},
	StatusStored:     {},
	StatusClosed:     {},
	StatusCompleted:  {},
}

// IsValidStatus 判断是否为可识别状态。
func IsValidStatus(s Status) bool {
	_, ok := validStatuses[s]
	return ok
}

// IsTerminal 终态：不占用月台（closed / completed）。
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCompleted
}

// DockType 月台分区：收货 / 发货。
type DockType string

const (
	DockReceiving DockType = "receiving"
	DockDispatch  DockType = "dispatch"
)

// LaneType 入场通道类型：快速通道（无固定月台）或月台通道。
type LaneType string

const (
	LaneQuick LaneType = "quick"
	LaneDock  LaneType = "dock"
)

// UnassignedDock 月台号的“未分配”哨兵值，始终以字符串存储。
const UnassignedDock = "0"

// Role 操作角色枚举。
type Role string

const (
	RoleGate       Role = "gate"       // 门岗
	RoleReceiving  Role = "receiving"  // 仓库收货
	RoleCommercial Role = "commercial" // 商务
	RoleManagement Role = "management" // 管理层
	RoleAdmin      Role = "admin"      // 管理员
	RoleSystem     Role = "system"     // 未认证的系统哨兵（仅用于种子数据）
)

// roleAliases 兼容旧版面板沿用的西语角色名。
var roleAliases = map[string]Role{
	"porteria":    RoleGate,
	"recepcion":   RoleReceiving,
	"comercial":   RoleCommercial,
	"gerencia":    RoleManagement,
	"operaciones": RoleReceiving,
}

// ParseRole 解析角色字符串（含旧版别名），未知角色返回 RoleSystem。
func ParseRole(s string) Role {
	s = strings.TrimSpace(strings.ToLower(s))
	switch Role(s) {
	case RoleGate, RoleReceiving, RoleCommercial, RoleManagement, RoleAdmin, RoleSystem:
		return Role(s)
	}
	if r, ok := roleAliases[s]; ok {
		return r
	}
	return RoleSystem
}

// Actor 一次变更操作的执行者（由身份协作方提供，核心不做鉴权）。
type Actor struct {
	UserID string
	Role   Role
}

// SystemActor 种子数据使用的系统哨兵执行者。
var SystemActor = Actor{UserID: "system", Role: RoleSystem}

// HistoryEntry 状态流转审计记录，只追加、不可修改。
type HistoryEntry struct {
	Status    Status    `json:"status" bson:"status"`
	ChangedAt time.Time `json:"changed_at" bson:"changed_at"`
	ChangedBy string    `json:"changed_by" bson:"changed_by"`
	Role      Role      `json:"role" bson:"role"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
}

// Truck 卡车 GORM 模型（history / cargo_items 以 JSON 序列化入库）。
type Truck struct {
	ID string `gorm:"primaryKey;size:36" json:"id" bson:"_id"`

	// 基础信息
	CompanyName string `gorm:"size:128;not null" json:"company_name" bson:"company_name"`
	ClientName  string `gorm:"size:128;not null" json:"client_name" bson:"client_name"`
	Plate       string `gorm:"index;size:32;not null" json:"plate" bson:"plate"` // 始终大写
	DriverName  string `gorm:"size:64;not null" json:"driver_name" bson:"driver_name"`
	DriverTaxID string `gorm:"size:32" json:"driver_tax_id,omitempty" bson:"driver_tax_id,omitempty"`

	// 调度信息
	DockType   DockType `gorm:"type:varchar(16);index;not null" json:"dock_type" bson:"dock_type"`
	DockNumber string   `gorm:"size:8;not null;default:'0'" json:"dock_number" bson:"dock_number"` // "0" 表示未分配
	LaneType   LaneType `gorm:"type:varchar(8);not null" json:"lane_type" bson:"lane_type"`

	// 流程信息
	Status      Status `gorm:"type:varchar(16);index;not null" json:"status" bson:"status"`
	Notes       string `gorm:"size:512" json:"notes,omitempty" bson:"notes,omitempty"`
	DelayReason string `gorm:"size:255" json:"delay_reason,omitempty" bson:"delay_reason,omitempty"`
	GuideDocURL string `gorm:"size:255" json:"guide_doc_url,omitempty" bson:"guide_doc_url,omitempty"`

	// 货物信息（仅展示用，不参与状态流转）
	Pallets       int      `json:"pallets,omitempty" bson:"pallets,omitempty"`
	Boxes         int      `json:"boxes,omitempty" bson:"boxes,omitempty"`
	Kilos         float64  `json:"kilos,omitempty" bson:"kilos,omitempty"`
	DeclaredValue int64    `json:"declared_value,omitempty" bson:"declared_value,omitempty"`
	CargoItems    []string `gorm:"serializer:json" json:"cargo_items,omitempty" bson:"cargo_items,omitempty"`

	// 时间信息：里程碑字段一经写入不再覆盖
	ScheduledArrival time.Time  `json:"scheduled_arrival" bson:"scheduled_arrival"`
	CheckInGateAt    *time.Time `json:"check_in_gate_at,omitempty" bson:"check_in_gate_at,omitempty"`
	CheckInDockAt    *time.Time `json:"check_in_dock_at,omitempty" bson:"check_in_dock_at,omitempty"`
	ProcessStartAt   *time.Time `json:"process_start_at,omitempty" bson:"process_start_at,omitempty"`
	ProcessEndAt     *time.Time `json:"process_end_at,omitempty" bson:"process_end_at,omitempty"`
	StoredAt         *time.Time `json:"stored_at,omitempty" bson:"stored_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	History []HistoryEntry `gorm:"serializer:json" json:"history" bson:"history"`
}

// Clone 深拷贝：读侧快照不得与存储中的记录共享切片。
func (t *Truck) Clone() Truck {
	c := *t
	if t.CargoItems != nil {
		c.CargoItems = append([]string(nil), t.CargoItems...)
	}
	if t.History != nil {
		c.History = append([]HistoryEntry(nil), t.History...)
	}
	c.CheckInGateAt = cloneTime(t.CheckInGateAt)
	c.CheckInDockAt = cloneTime(t.CheckInDockAt)
	c.ProcessStartAt = cloneTime(t.ProcessStartAt)
	c.ProcessEndAt = cloneTime(t.ProcessEndAt)
	c.StoredAt = cloneTime(t.StoredAt)
	c.ClosedAt = cloneTime(t.ClosedAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
