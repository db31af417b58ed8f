package truck

import (
	"strconv"
	"time"
)

// 读侧分析：延误判定、月台占用、到场准点率。
// 全部为纯函数，基于快照每次读取时重算，从不写回存储。

// DefaultDelayThreshold 排队延误的默认阈值。
const DefaultDelayThreshold = 30 * time.Minute

// MinutesBetween 返回 from 到 to 之间的整分钟数，向下取整且不为负；
// 任一端缺失时返回 0。
func MinutesBetween(from, to *time.Time) int {
	if from == nil || to == nil {
		return 0
	}
	m := int(to.Sub(*from) / time.Minute)
	if m < 0 {
		return 0
	}
	return m
}

// waitingSince 排队计时的基准：优先月台报到时间，缺失时退回门岗报到时间。
func waitingSince(t *Truck) *time.Time {
	if t.CheckInDockAt != nil {
		return t.CheckInDockAt
	}
	return t.CheckInGateAt
}

// IsDelayed 排队中的卡车等待分钟数达到阈值（含）即视为延误。
func IsDelayed(t *Truck, now time.Time, threshold time.Duration) bool {
	if t == nil || t.Status != StatusQueued {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultDelayThreshold
	}
	mins := MinutesBetween(waitingSince(t), &now)
	return mins >= int(threshold/time.Minute)
}

// ComputeDelayed 返回快照中所有延误的排队卡车。
func ComputeDelayed(trucks []Truck, now time.Time, threshold time.Duration) []Truck {
	out := make([]Truck, 0)
	for i := range trucks {
		if IsDelayed(&trucks[i], now, threshold) {
			out = append(out, trucks[i])
		}
	}
	return out
}

// DockOccupancy 单个月台的占用情况。
type DockOccupancy struct {
	Dock     string `json:"dock"`
	Count    int    `json:"count"`    // 分配到该月台的卡车数
	Waiting  int    `json:"waiting"`  // 其中排队中的数量
	Occupied bool   `json:"occupied"` // 存在非终态卡车即为占用
}

// ComputeDockOccupancy 计算指定分区内某个月台的占用情况。
// 预到场状态（scheduled / en_route）不计入占用。
func ComputeDockOccupancy(trucks []Truck, dockType DockType, dockNumber string) DockOccupancy {
	occ := DockOccupancy{Dock: dockNumber}
	for i := range trucks {
		t := &trucks[i]
		if t.DockType != dockType || t.DockNumber != dockNumber {
			continue
		}
		if t.Status == StatusScheduled || t.Status == StatusEnRoute {
			continue
		}
		occ.Count++
		if t.Status == StatusQueued {
			occ.Waiting++
		}
		if !t.Status.IsTerminal() {
			occ.Occupied = true
		}
	}
	return occ
}

// ComputeOccupancySummary 计算 1..dockCount 各月台的占用汇总（面板总览用）。
func ComputeOccupancySummary(trucks []Truck, dockType DockType, dockCount int) []DockOccupancy {
	out := make([]DockOccupancy, 0, dockCount)
	for i := 1; i <= dockCount; i++ {
		out = append(out, ComputeDockOccupancy(trucks, dockType, strconv.Itoa(i)))
	}
	return out
}

// OnTimeRate 到场准点率：月台报到时间不晚于预约到场时间的占比。
// 仅统计已有月台报到时间的卡车；无样本时返回 0。
func OnTimeRate(trucks []Truck) float64 {
	total := 0
	onTime := 0
	for i := range trucks {
		t := &trucks[i]
		if t.CheckInDockAt == nil {
			continue
		}
		total++
		if !t.CheckInDockAt.After(t.ScheduledArrival) {
			onTime++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(onTime) / float64(total)
}

// AverageGateToDockMinutes 门岗到月台的平均等待分钟数（两个报到时间都有才计入）。
func AverageGateToDockMinutes(trucks []Truck) int {
	total := 0
	n := 0
	for i := range trucks {
		t := &trucks[i]
		if t.CheckInGateAt == nil || t.CheckInDockAt == nil {
			continue
		}
		total += MinutesBetween(t.CheckInGateAt, t.CheckInDockAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}
