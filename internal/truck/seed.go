package truck

import (
	"time"

	"github.com/google/uuid"
)

// SeedTrucks 演示/开发环境的种子数据：若干典型在场卡车。
// 历史由系统哨兵执行者写入，与正常建单同样满足
// “最后一条历史 == 当前状态”的不变式。
func SeedTrucks(now time.Time) []Truck {
	mins := func(m int) time.Time { return now.Add(time.Duration(m) * time.Minute) }
	ptr := func(t time.Time) *time.Time { return &t }

	seeded := func(client, plate, driver string, dockType DockType, dock string, status Status, scheduled time.Time, notes string, history []HistoryEntry) Truck {
		t := Truck{
			ID:               uuid.NewString(),
			CompanyName:      client,
			ClientName:       client,
			Plate:            plate,
			DriverName:       driver,
			DockType:         dockType,
			DockNumber:       dock,
			LaneType:         LaneDock,
			Status:           status,
			Notes:            notes,
			ScheduledArrival: scheduled,
			CreatedAt:        now,
			UpdatedAt:        now,
			History:          history,
		}
		return t
	}

	hist := func(entries ...HistoryEntry) []HistoryEntry { return entries }
	at := func(st Status, t time.Time) HistoryEntry {
		return HistoryEntry{Status: st, ChangedAt: t, ChangedBy: SystemActor.UserID, Role: SystemActor.Role}
	}

	t1 := seeded("Agrosuper", "ABCJ45", "Miguel R.", DockReceiving, "3", StatusQueued,
		mins(15), "Perdida de temperatura en ingreso",
		hist(at(StatusQueued, mins(-50))))
	t1.CheckInDockAt = ptr(mins(-50))

	t2 := seeded("Guayarauco", "PTZL11", "Camilo S.", DockDispatch, "7", StatusQueued,
		mins(-10), "Falta de documentacion de exportacion",
		hist(at(StatusQueued, mins(-70))))
	t2.CheckInDockAt = ptr(mins(-70))

	t3 := seeded("Polar Foods", "MNTC33", "Sebastian Q.", DockReceiving, "6", StatusQueued,
		mins(5), "Retraso por inspeccion sanitaria",
		hist(at(StatusQueued, mins(-35))))
	t3.CheckInDockAt = ptr(mins(-35))

	t4 := seeded("Friosur", "BHFZ21", "Jose P.", DockReceiving, "5", StatusProcessing,
		mins(-30), "Control de calidad en proceso",
		hist(at(StatusQueued, mins(-50)), at(StatusProcessing, mins(-12))))
	t4.CheckInDockAt = ptr(mins(-50))
	t4.ProcessStartAt = ptr(mins(-12))

	t5 := seeded("RetailMax", "DKLM98", "Andrea V.", DockDispatch, "1", StatusCompleted,
		mins(-120), "Descarga completa",
		hist(at(StatusQueued, mins(-150)), at(StatusProcessing, mins(-100)), at(StatusCompleted, mins(-30))))
	t5.CheckInDockAt = ptr(mins(-150))
	t5.ProcessStartAt = ptr(mins(-100))
	t5.ProcessEndAt = ptr(mins(-30))

	return []Truck{t1, t2, t3, t4, t5}
}
