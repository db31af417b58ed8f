package truck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YardLink/YardLink/internal/common/logger"
	"github.com/google/uuid"
)

// Service 生命周期协调器：封装卡车领域的全部变更用例与只读查询。
// 变更路径：校验 → 写锁内读-改-写 Store → 通知持久化 → 广播全量快照。
type Service struct {
	store   *Store
	persist Persistence
	broker  *Broker
	log     logger.Logger

	// DelayThreshold 排队延误阈值（默认 30 分钟）。
	DelayThreshold time.Duration
	// DockCount 每个分区的月台数量（默认 9）。
	DockCount int

	now func() time.Time
}

func NewService(store *Store, persist Persistence, broker *Broker, log logger.Logger) *Service {
	return &Service{
		store:          store,
		persist:        persist,
		broker:         broker,
		log:            log,
		DelayThreshold: DefaultDelayThreshold,
		DockCount:      9,
		now:            time.Now,
	}
}

// CreateTruckInput 创建卡车的入参。
type CreateTruckInput struct {
	CompanyName string
	ClientName  string
	Plate       string
	DriverName  string
	DriverTaxID string

	DockType   DockType
	DockNumber string
	LaneType   LaneType

	ScheduledArrival time.Time
	Notes            string

	// InitialStatus 为空时按角色取默认：门岗建单为 at_gate，商务排期为 scheduled。
	InitialStatus Status

	Pallets       int
	Boxes         int
	Kilos         float64
	DeclaredValue int64
	CargoItems    []string
}

// createRoles 允许建单的角色。
var createRoles = map[Role]Status{
	RoleGate:       StatusAtGate,
	RoleCommercial: StatusScheduled,
	RoleAdmin:      StatusScheduled,
}

// CreateTruck 建单。校验失败返回 ErrInvalidInput 且不产生任何记录。
func (s *Service) CreateTruck(ctx context.Context, in CreateTruckInput, actor Actor) (*Truck, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	defaultStatus, ok := createRoles[actor.Role]
	if !ok {
		return nil, fmt.Errorf("%w: role %s cannot create trucks", ErrForbidden, actor.Role)
	}

	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))
	in.DriverName = strings.TrimSpace(in.DriverName)
	in.DockNumber = strings.TrimSpace(in.DockNumber)

	switch {
	case in.CompanyName == "":
		return nil, fmt.Errorf("%w: company_name required", ErrInvalidInput)
	case in.ClientName == "":
		return nil, fmt.Errorf("%w: client_name required", ErrInvalidInput)
	case in.Plate == "":
		return nil, fmt.Errorf("%w: plate required", ErrInvalidInput)
	case in.DriverName == "":
		return nil, fmt.Errorf("%w: driver_name required", ErrInvalidInput)
	case in.ScheduledArrival.IsZero():
		return nil, fmt.Errorf("%w: scheduled_arrival required", ErrInvalidInput)
	}
	if in.DockType != DockReceiving && in.DockType != DockDispatch {
		return nil, fmt.Errorf("%w: unknown dock_type %q", ErrInvalidInput, in.DockType)
	}
	if in.LaneType == "" {
		in.LaneType = LaneQuick
	}
	if in.LaneType != LaneQuick && in.LaneType != LaneDock {
		return nil, fmt.Errorf("%w: unknown lane_type %q", ErrInvalidInput, in.LaneType)
	}
	// 月台通道必须指定月台号；快速通道始终存未分配哨兵
	if in.LaneType == LaneDock {
		if in.DockNumber == "" || in.DockNumber == UnassignedDock {
			return nil, fmt.Errorf("%w: dock_number required for dock lane", ErrInvalidInput)
		}
	} else {
		in.DockNumber = UnassignedDock
	}

	initial := in.InitialStatus
	if initial == "" {
		initial = defaultStatus
	}
	if !IsValidStatus(initial) {
		return nil, fmt.Errorf("%w: unknown initial status %q", ErrInvalidInput, initial)
	}

	now := s.now()
	t := Truck{
		ID:               uuid.NewString(),
		CompanyName:      in.CompanyName,
		ClientName:       in.ClientName,
		Plate:            in.Plate,
		DriverName:       in.DriverName,
		DriverTaxID:      strings.TrimSpace(in.DriverTaxID),
		DockType:         in.DockType,
		DockNumber:       in.DockNumber,
		LaneType:         in.LaneType,
		Status:           initial,
		Notes:            strings.TrimSpace(in.Notes),
		Pallets:          in.Pallets,
		Boxes:            in.Boxes,
		Kilos:            in.Kilos,
		DeclaredValue:    in.DeclaredValue,
		CargoItems:       append([]string(nil), in.CargoItems...),
		ScheduledArrival: in.ScheduledArrival,
		CreatedAt:        now,
		UpdatedAt:        now,
		History: []HistoryEntry{{
			Status:    initial,
			ChangedAt: now,
			ChangedBy: actor.UserID,
			Role:      actor.Role,
		}},
	}
	// 直接建入报到类状态时同样适用“一次写入”里程碑规则
	stampMilestone(&t, initial, now)

	s.store.Insert(t)
	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"truck_id": t.ID, "plate": t.Plate, "status": t.Status, "actor": actor.UserID,
		}).Info("truck created")
	}
	if err := s.persistAndPublish(ctx, &t); err != nil {
		return &t, err
	}
	return &t, nil
}

// RequestTransition 请求状态流转。
// 仅校验目标状态合法性与角色权限；不校验线性顺序（见 state_machine.go）。
func (s *Service) RequestTransition(ctx context.Context, truckID string, target Status, actor Actor, note string) (*Truck, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	truckID = strings.TrimSpace(truckID)
	if truckID == "" {
		return nil, fmt.Errorf("%w: truck_id required", ErrInvalidInput)
	}
	if !IsValidStatus(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	now := s.now()
	updated, err := s.store.Update(truckID, func(t *Truck) error {
		if !CanTransition(actor.Role, target) {
			return fmt.Errorf("%w: role %s cannot set status %s", ErrForbidden, actor.Role, target)
		}
		return ApplyTransition(t, target, actor, note, now)
	})
	if err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"truck_id": updated.ID, "status": updated.Status, "actor": actor.UserID, "role": actor.Role,
		}).Info("truck status changed")
	}
	if err := s.persistAndPublish(ctx, &updated); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// UpdateTruckInput 明细更新入参，nil 字段表示不修改（last-writer-wins，不做合并）。
// 状态与历史不可经由明细更新修改。
type UpdateTruckInput struct {
	CompanyName *string
	ClientName  *string
	Plate       *string
	DriverName  *string
	DriverTaxID *string

	DockType   *DockType
	DockNumber *string
	LaneType   *LaneType

	ScheduledArrival *time.Time
	Notes            *string
	DelayReason      *string
	GuideDocURL      *string

	Pallets       *int
	Boxes         *int
	Kilos         *float64
	DeclaredValue *int64
	CargoItems    []string
}

// UpdateDetails 更新明细字段。除系统哨兵外任何已认证角色均可调用。
func (s *Service) UpdateDetails(ctx context.Context, truckID string, in UpdateTruckInput, actor Actor) (*Truck, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if actor.Role == RoleSystem || strings.TrimSpace(actor.UserID) == "" {
		return nil, fmt.Errorf("%w: unauthenticated actor cannot edit details", ErrForbidden)
	}

	now := s.now()
	updated, err := s.store.Update(strings.TrimSpace(truckID), func(t *Truck) error {
		applyDetails(t, in)
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.persistAndPublish(ctx, &updated); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// FlagDelay 登记延误原因（商务/管理面板用）。
func (s *Service) FlagDelay(ctx context.Context, truckID, reason string, actor Actor) (*Truck, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: delay reason required", ErrInvalidInput)
	}
	return s.UpdateDetails(ctx, truckID, UpdateTruckInput{DelayReason: &reason}, actor)
}

// DeleteTruck 硬删除，仅管理员可用，无墓碑。
func (s *Service) DeleteTruck(ctx context.Context, truckID string, actor Actor) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("service not initialized")
	}
	if actor.Role != RoleAdmin {
		return fmt.Errorf("%w: only admin can delete trucks", ErrForbidden)
	}
	truckID = strings.TrimSpace(truckID)
	if !s.store.Delete(truckID) {
		return ErrNotFound
	}

	if s.log != nil {
		s.log.WithFields(map[string]interface{}{
			"truck_id": truckID, "actor": actor.UserID,
		}).Warn("truck deleted")
	}
	var err error
	if s.persist != nil {
		if perr := s.persist.Delete(ctx, truckID); perr != nil {
			err = fmt.Errorf("%w: %v", ErrPersistenceFailed, perr)
		}
	}
	if s.broker != nil {
		s.broker.Publish()
	}
	return err
}

// GetTruck 按 ID 查询快照。
func (s *Service) GetTruck(truckID string) (Truck, error) {
	t, ok := s.store.Get(strings.TrimSpace(truckID))
	if !ok {
		return Truck{}, ErrNotFound
	}
	return t, nil
}

// ListAll 全量快照（创建时间倒序）。
func (s *Service) ListAll() []Truck {
	return s.store.List()
}

// ListByDockType 按月台分区过滤的快照。
func (s *Service) ListByDockType(dt DockType) []Truck {
	return s.store.ListByDockType(dt)
}

// ComputeDelayed 当前延误的排队卡车。
func (s *Service) ComputeDelayed() []Truck {
	return ComputeDelayed(s.store.List(), s.now(), s.DelayThreshold)
}

// ComputeOccupancy 指定分区的月台占用汇总。
func (s *Service) ComputeOccupancy(dt DockType) []DockOccupancy {
	return ComputeOccupancySummary(s.store.ListByDockType(dt), dt, s.DockCount)
}

// persistAndPublish 先通知持久化，再无条件广播快照。
// 落盘失败不回滚内存，也不阻止广播（订阅方看到的是权威内存状态）。
func (s *Service) persistAndPublish(ctx context.Context, t *Truck) error {
	var err error
	if s.persist != nil {
		if perr := s.persist.Save(ctx, t); perr != nil {
			if s.log != nil {
				s.log.WithFields(map[string]interface{}{
					"truck_id": t.ID, "error": perr.Error(),
				}).Error("durable write failed, in-memory state kept")
			}
			err = fmt.Errorf("%w: %v", ErrPersistenceFailed, perr)
		}
	}
	if s.broker != nil {
		s.broker.Publish()
	}
	return err
}

func applyDetails(t *Truck, in UpdateTruckInput) {
	if in.CompanyName != nil {
		t.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.ClientName != nil {
		t.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.Plate != nil {
		t.Plate = strings.ToUpper(strings.TrimSpace(*in.Plate))
	}
	if in.DriverName != nil {
		t.DriverName = strings.TrimSpace(*in.DriverName)
	}
	if in.DriverTaxID != nil {
		t.DriverTaxID = strings.TrimSpace(*in.DriverTaxID)
	}
	if in.DockType != nil {
		t.DockType = *in.DockType
	}
	if in.DockNumber != nil {
		n := strings.TrimSpace(*in.DockNumber)
		if n == "" {
			n = UnassignedDock
		}
		t.DockNumber = n
	}
	if in.LaneType != nil {
		t.LaneType = *in.LaneType
	}
	if in.ScheduledArrival != nil {
		t.ScheduledArrival = *in.ScheduledArrival
	}
	if in.Notes != nil {
		t.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.DelayReason != nil {
		t.DelayReason = strings.TrimSpace(*in.DelayReason)
	}
	if in.GuideDocURL != nil {
		t.GuideDocURL = strings.TrimSpace(*in.GuideDocURL)
	}
	if in.Pallets != nil {
		t.Pallets = *in.Pallets
	}
	if in.Boxes != nil {
		t.Boxes = *in.Boxes
	}
	if in.Kilos != nil {
		t.Kilos = *in.Kilos
	}
	if in.DeclaredValue != nil {
		t.DeclaredValue = *in.DeclaredValue
	}
	if in.CargoItems != nil {
		t.CargoItems = append([]string(nil), in.CargoItems...)
	}
}
