package main

import (
	"net/http"
	"time"

	"swimops/src/config"
	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
)

func timecardHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/time-entries", func(ctx *gin.Context) {
			roles := ctx.GetStringSlice("roles")
			db := db.GetDb()
			q := db.Model(&models.TimeEntry{}).Preload("Instructor")
			if !utils.HasRole(roles, types.ROLE_ADMIN) {
				q = q.Where("instructor_id = ?", ctx.GetString("id"))
			} else if instructorId := ctx.Query("instructor_id"); instructorId != "" {
				q = q.Where("instructor_id = ?", instructorId)
			}
			if status := ctx.Query("status"); status != "" {
				q = q.Where("status = ?", status)
			}
			if start := ctx.Query("start_date"); start != "" {
				q = q.Where("work_date >= ?", start)
			}
			if end := ctx.Query("end_date"); end != "" {
				q = q.Where("work_date <= ?", end)
			}
			var entries []models.TimeEntry
			if err := q.Order("work_date asc").Find(&entries).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			var totalHours, approvedHours float64
			var approvedCount, pendingCount int
			for i := range entries {
				totalHours += entries[i].Hours
				switch entries[i].Status {
				case types.TIME_ENTRY_APPROVED:
					approvedHours += entries[i].Hours
					approvedCount++
				case types.TIME_ENTRY_PENDING:
					pendingCount++
				}
			}
			ctx.JSON(http.StatusOK, gin.H{
				"data":  entries,
				"count": len(entries),
				"summary": gin.H{
					"total_hours":    totalHours,
					"approved_hours": approvedHours,
					"approved_count": approvedCount,
					"pending_count":  pendingCount,
				},
			})
		})
	return g
}

func adminTimecardHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		PATCH("/time-entries/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateTimeEntryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var entry models.TimeEntry
			if err := db.Where("id = ?", params.ID).First(&entry).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.Hours != nil {
				updates["hours"] = *body.Hours
			}
			if body.Status != nil {
				updates["status"] = *body.Status
				if *body.Status == string(types.TIME_ENTRY_APPROVED) {
					updates["approved_by"] = ctx.GetString("id")
					updates["approved_at"] = time.Now()
				}
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
				return
			}
			if err := db.Model(&entry).Updates(updates).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entry})
		}).
		POST("/time-entries/approve-all", func(ctx *gin.Context) {
			var body types.ApproveAllTimeEntriesRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			start, err := time.Parse(config.DATE_PARSE_FORMAT, body.PeriodStart)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			end, err := time.Parse(config.DATE_PARSE_FORMAT, body.PeriodEnd)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			result := db.
				Model(&models.TimeEntry{}).
				Where("instructor_id = ?", body.InstructorID).
				Where("status = ?", types.TIME_ENTRY_PENDING).
				Where("work_date >= ? AND work_date <= ?", start, end).
				Updates(map[string]any{
					"status":      types.TIME_ENTRY_APPROVED,
					"approved_by": ctx.GetString("id"),
					"approved_at": time.Now(),
				})
			if result.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": result.Error.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"approved": result.RowsAffected})
		})
	return g
}
