package main

import (
	"log"
	"net/http"
	"time"

	"swimops/src/common"
	"swimops/src/config"
	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
)

func poHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/pos", func(ctx *gin.Context) {
			db := db.GetDb()
			q := db.
				Model(&models.PurchaseOrder{}).
				Preload("Swimmer").
				Preload("FundingSource")
			if status := ctx.Query("status"); status != "" {
				q = q.Where("status = ?", status)
			}
			if swimmerId := ctx.Query("swimmer_id"); swimmerId != "" {
				q = q.Where("swimmer_id = ?", swimmerId)
			}
			if fundingSourceId := ctx.Query("funding_source_id"); fundingSourceId != "" {
				q = q.Where("funding_source_id = ?", fundingSourceId)
			}
			var pos []models.PurchaseOrder
			if err := q.Order("created_at desc").Find(&pos).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pos, "count": len(pos)})
		}).
		GET("/pos/stats", func(ctx *gin.Context) {
			stats, err := common.CachedPOStats(ctx)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stats})
		}).
		GET("/pos/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var po models.PurchaseOrder
			if err := db.
				Where("id = ?", params.ID).
				Preload("Swimmer").
				Preload("FundingSource").
				First(&po).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": po, "is_overdue": po.IsOverdue(time.Now())})
		}).
		POST("/pos", func(ctx *gin.Context) {
			var body types.CreatePORequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var swimmer models.Swimmer
			if err := db.Where("id = ?", body.SwimmerID).First(&swimmer).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "swimmer not found"})
				return
			}
			var fundingSource models.FundingSource
			if err := db.Where("id = ?", body.FundingSourceID).First(&fundingSource).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "funding source not found"})
				return
			}
			po := models.PurchaseOrder{
				PONumber:           body.PONumber,
				SwimmerID:          swimmer.ID,
				FundingSourceID:    fundingSource.ID,
				Type:               types.POType(body.Type),
				SessionsAuthorized: body.SessionsAuthorized,
				RateCents:          body.RateCents,
				StartDate:          startDate,
				EndDate:            endDate,
				Notes:              body.Notes,
			}
			if err := db.Create(&po).Error; err != nil {
				log.Printf("Could not create purchase order: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": po})
		}).
		PATCH("/pos/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdatePORequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.SessionsBooked != nil {
				updates["sessions_booked"] = *body.SessionsBooked
			}
			if body.EndDate != nil {
				endDate, err := time.Parse(config.DATE_PARSE_FORMAT, *body.EndDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["end_date"] = endDate
			}
			if body.Notes != nil {
				updates["notes"] = *body.Notes
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
				return
			}
			db := db.GetDb()
			var po models.PurchaseOrder
			if err := db.Where("id = ?", params.ID).First(&po).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if err := db.Model(&po).Updates(updates).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": po})
		}).
		PATCH("/pos/:id/approve", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ApprovePORequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			po, err := common.ApprovePurchaseOrder(utils.MustUUID(params.ID), body.AuthorizationNumber, body.Notes)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": po})
		}).
		PATCH("/pos/:id/decline", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.DeclinePORequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			po, err := common.DeclinePurchaseOrder(utils.MustUUID(params.ID), body.Reason)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": po})
		}).
		PATCH("/pos/:id/complete", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			po, err := common.CompletePurchaseOrder(utils.MustUUID(params.ID))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": po})
		}).
		PATCH("/pos/:id/billing", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdatePOBillingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.BillingStatus != nil {
				updates["billing_status"] = *body.BillingStatus
			}
			if body.AmountBilled != nil {
				updates["amount_billed_cents"] = *body.AmountBilled
			}
			if body.AmountPaid != nil {
				updates["amount_paid_cents"] = *body.AmountPaid
			}
			if body.InvoiceNumber != nil {
				updates["invoice_number"] = *body.InvoiceNumber
			}
			if body.PaymentReference != nil {
				updates["payment_reference"] = *body.PaymentReference
			}
			if body.DueDate != nil {
				dueDate, err := time.Parse(config.DATE_PARSE_FORMAT, *body.DueDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				updates["due_date"] = dueDate
			}
			if body.BillingNotes != nil {
				updates["billing_notes"] = *body.BillingNotes
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "no billing fields to update"})
				return
			}
			db := db.GetDb()
			var po models.PurchaseOrder
			if err := db.Where("id = ?", params.ID).First(&po).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if err := db.Model(&po).Updates(updates).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": po})
		})
	return g
}
