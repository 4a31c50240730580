package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"swimops/src/db"
	"swimops/src/lib"
	"swimops/src/models"
	"swimops/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovePurchaseOrder moves a pending PO forward. With an authorization
// number it goes straight to active; without one it parks in
// approved_pending_auth until the agency supplies it.
func ApprovePurchaseOrder(id uuid.UUID, authNumber *string, notes *string) (*models.PurchaseOrder, error) {
	dbi := db.GetDb()
	var po models.PurchaseOrder
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Where(&models.PurchaseOrder{ID: id}).
			First(&po).
			Error; err != nil {
			return err
		}
		if po.Status != types.PO_PENDING && po.Status != types.PO_APPROVED_PENDING_AUTH {
			return fmt.Errorf("purchase order %s cannot be approved from status %s", po.PONumber, po.Status)
		}
		updates := map[string]any{}
		if authNumber != nil && *authNumber != "" {
			updates["status"] = types.PO_ACTIVE
			updates["authorization_number"] = *authNumber
		} else {
			updates["status"] = types.PO_APPROVED_PENDING_AUTH
		}
		if notes != nil && *notes != "" {
			updates["notes"] = *notes
		}
		if err := tx.
			Model(&models.PurchaseOrder{}).
			Where("id = ?", id).
			Updates(updates).
			Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&po).Error
	})
	if err != nil {
		return nil, err
	}
	go invalidatePOStatsCache()
	return &po, nil
}

// declineUpdates cancels the order and overwrites its notes with the
// declined reason.
func declineUpdates(reason string) map[string]any {
	return map[string]any{
		"status": types.PO_CANCELED,
		"notes":  fmt.Sprintf("Declined: %s", reason),
	}
}

// DeclinePurchaseOrder cancels a pending PO. The reason is mandatory and
// overwrites the notes with a Declined: prefix.
func DeclinePurchaseOrder(id uuid.UUID, reason string) (*models.PurchaseOrder, error) {
	dbi := db.GetDb()
	var po models.PurchaseOrder
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Where(&models.PurchaseOrder{ID: id}).
			First(&po).
			Error; err != nil {
			return err
		}
		if po.Status != types.PO_PENDING && po.Status != types.PO_APPROVED_PENDING_AUTH {
			return fmt.Errorf("purchase order %s cannot be declined from status %s", po.PONumber, po.Status)
		}
		if err := tx.
			Model(&models.PurchaseOrder{}).
			Where("id = ?", id).
			Updates(declineUpdates(reason)).
			Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&po).Error
	})
	if err != nil {
		return nil, err
	}
	go invalidatePOStatsCache()
	return &po, nil
}

// CompletePurchaseOrder closes an active PO once every authorized session
// has been used.
func CompletePurchaseOrder(id uuid.UUID) (*models.PurchaseOrder, error) {
	dbi := db.GetDb()
	var po models.PurchaseOrder
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Where(&models.PurchaseOrder{ID: id}).
			First(&po).
			Error; err != nil {
			return err
		}
		if !po.CanComplete() {
			return fmt.Errorf("purchase order %s has %d of %d sessions used and cannot be completed",
				po.PONumber, po.SessionsUsed, po.SessionsAuthorized)
		}
		if err := tx.
			Model(&models.PurchaseOrder{}).
			Where("id = ?", id).
			Update("status", types.PO_COMPLETED).
			Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&po).Error
	})
	if err != nil {
		return nil, err
	}
	go invalidatePOStatsCache()
	return &po, nil
}

// ExpirePurchaseOrders is run daily by the scheduler: active POs past their
// end date roll to expired.
func ExpirePurchaseOrders() {
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.PurchaseOrder{}).
			Where(&models.PurchaseOrder{Status: types.PO_ACTIVE}).
			Where("end_date < ?", time.Now()).
			Update("status", types.PO_EXPIRED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("[pos] expired %d purchase orders\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while expiring purchase orders: %s\n", err.Error())
		return
	}
	invalidatePOStatsCache()
}

type POStats struct {
	Total                 int   `json:"total"`
	Pending               int   `json:"pending"`
	ApprovedPendingAuth   int   `json:"approved_pending_auth"`
	Active                int   `json:"active"`
	Completed             int   `json:"completed"`
	Cancelled             int   `json:"cancelled"`
	Expired               int   `json:"expired"`
	PastDue               int   `json:"past_due"`
	ExpiringSoon          int   `json:"expiring_soon"`
	TotalBilledCents      int64 `json:"total_billed_cents"`
	TotalPaidCents        int64 `json:"total_paid_cents"`
	TotalOutstandingCents int64 `json:"total_outstanding_cents"`
}

// ComputePOStats derives the dashboard rollups. Past-due is computed from
// due dates, never from the stored billing status alone.
func ComputePOStats(pos []models.PurchaseOrder, now time.Time) POStats {
	stats := POStats{Total: len(pos)}
	for i := range pos {
		po := &pos[i]
		switch po.Status {
		case types.PO_PENDING:
			stats.Pending++
		case types.PO_APPROVED_PENDING_AUTH:
			stats.ApprovedPendingAuth++
		case types.PO_ACTIVE:
			stats.Active++
		case types.PO_COMPLETED:
			stats.Completed++
		case types.PO_CANCELED:
			stats.Cancelled++
		case types.PO_EXPIRED:
			stats.Expired++
		}
		if po.IsOverdue(now) {
			stats.PastDue++
		}
		if po.ExpiringSoon(now, 7*24*time.Hour) {
			stats.ExpiringSoon++
		}
		stats.TotalBilledCents += po.AmountBilledCents
		stats.TotalPaidCents += po.AmountPaidCents
		stats.TotalOutstandingCents += po.AmountOutstandingCents()
	}
	return stats
}

const poStatsCacheKey = "pos:stats"

// CachedPOStats serves the rollup from redis when fresh, recomputing from
// the database otherwise.
func CachedPOStats(ctx context.Context) (*POStats, error) {
	rd := lib.GetRedisClient()
	if rd != nil {
		if val, err := rd.Get(ctx, poStatsCacheKey).Result(); err == nil && val != "" {
			var stats POStats
			if err := json.Unmarshal([]byte(val), &stats); err == nil {
				return &stats, nil
			}
		}
	}
	dbi := db.GetDb()
	var pos []models.PurchaseOrder
	if err := dbi.Model(&models.PurchaseOrder{}).Find(&pos).Error; err != nil {
		return nil, err
	}
	stats := ComputePOStats(pos, time.Now())
	if rd != nil {
		if b, err := json.Marshal(&stats); err == nil {
			if err := rd.Set(ctx, poStatsCacheKey, string(b), time.Minute).Err(); err != nil {
				log.Printf("[redis] Error caching PO stats: %s\n", err.Error())
			}
		}
	}
	return &stats, nil
}

func invalidatePOStatsCache() {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), poStatsCacheKey).Err(); err != nil {
		log.Printf("[redis] Error invalidating PO stats: %s\n", err.Error())
	}
}
