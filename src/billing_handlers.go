package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"swimops/src/common"
	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func billingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/billing/periods", func(ctx *gin.Context) {
			var filters types.BillingPeriodQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.BillingPeriod{})
			if filters.Month > 0 {
				q = q.Where("month = ?", filters.Month)
			}
			if filters.Year > 0 {
				q = q.Where("year = ?", filters.Year)
			}
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			}
			var periods []models.BillingPeriod
			if err := q.Order("year desc, month desc").Find(&periods).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": periods, "count": len(periods)})
		}).
		POST("/billing/periods", func(ctx *gin.Context) {
			var body types.CreateBillingPeriodRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var existing int64
			if err := db.Model(&models.BillingPeriod{}).
				Where("month = ? AND year = ?", body.Month, body.Year).
				Count(&existing).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if existing > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("billing period %d/%d already exists", body.Month, body.Year)})
				return
			}
			period := models.BillingPeriod{
				Month: body.Month,
				Year:  body.Year,
			}
			if err := db.Create(&period).Error; err != nil {
				log.Printf("Could not create billing period: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": period})
		}).
		GET("/billing/periods/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var period models.BillingPeriod
			if err := db.Where("id = ?", params.ID).First(&period).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": period})
		}).
		PATCH("/billing/periods/:id/status", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateBillingPeriodStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			period, err := common.MarkPeriodStatus(utils.MustUUID(params.ID), types.BillingPeriodStatus(body.Status))
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "billing period not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": period})
		}).
		GET("/billing/periods/:id/items", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var items []models.BillingLineItem
			if err := db.
				Model(&models.BillingLineItem{}).
				Where("billing_period_id = ?", params.ID).
				Preload("PurchaseOrder").
				Preload("Swimmer").
				Preload("FundingSource").
				Find(&items).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
		}).
		GET("/billing/periods/:id/summary", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			summary, err := common.GetPeriodSummary(utils.MustUUID(params.ID))
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": summary})
		}).
		POST("/billing/periods/:id/generate", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			count, err := common.PopulateBillingLineItems(utils.MustUUID(params.ID))
			if err != nil {
				if errors.Is(err, common.ErrPeriodLocked) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"line_items": count})
		}).
		POST("/billing/periods/:id/export", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var period models.BillingPeriod
			if err := db.Where("id = ?", params.ID).First(&period).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			payload, err := common.GenerateEBillingXML(period.ID)
			if err != nil {
				if errors.Is(err, common.ErrPeriodLocked) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filename := common.ExportFilename(period.Year, period.Month)
			ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			ctx.Data(http.StatusOK, "application/xml", []byte(payload))
		})
	return g
}
