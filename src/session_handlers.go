package main

import (
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

func sessionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/sessions", func(ctx *gin.Context) {
			var filters types.SessionsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.
				Model(&models.Session{}).
				Preload("Instructor").
				Order("start_time asc")
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			} else {
				q = q.Where("status <> ?", types.SESSION_DRAFT)
			}
			if filters.InstructorID != "" {
				q = q.Where("instructor_id = ?", filters.InstructorID)
			}
			if filters.MonthYear != "" {
				q = q.Where("month_year = ?", filters.MonthYear)
			}
			if filters.Location != "" {
				q = q.Where("location = ?", filters.Location)
			}
			var sessions []models.Session
			if err := q.Find(&sessions).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sessions, "count": len(sessions)})
		})
	return g
}

func adminSessionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/sessions/generate", func(ctx *gin.Context) {
			var body types.GenerateSessionsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			createdBy := utils.MustUUID(ctx.GetString("id"))
			result, err := common.GenerateDraftBatch(&body, createdBy)
			if err != nil {
				log.Printf("[sessions] Error generating batch: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		GET("/sessions/drafts", func(ctx *gin.Context) {
			db := db.GetDb()
			var sessions []models.Session
			err := db.
				Model(&models.Session{}).
				Where(&models.Session{Status: types.SESSION_DRAFT}).
				Preload("Instructor").
				Order("created_at desc").
				Find(&sessions).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			groups := common.GroupDraftBatches(sessions)
			type titledGroup struct {
				common.BatchGroup
				Title string `json:"title"`
			}
			out := make([]titledGroup, 0, len(groups))
			for i := range groups {
				out = append(out, titledGroup{BatchGroup: groups[i], Title: common.BatchTitle(&groups[i])})
			}
			ctx.JSON(http.StatusOK, gin.H{"data": out, "count": len(out)})
		}).
		POST("/sessions/open", func(ctx *gin.Context) {
			var body types.SessionSelectionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ids, err := common.ResolveSelection(&body)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if err := common.OpenSessions(ids); err != nil {
				log.Printf("[sessions] Error opening selection: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"opened": len(ids)})
		}).
		POST("/sessions/delete", func(ctx *gin.Context) {
			var body types.SessionSelectionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ids, err := common.ResolveSelection(&body)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if err := common.DeleteDraftSessions(ids); err != nil {
				log.Printf("[sessions] Error deleting selection: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"deleted": len(ids)})
		}).
		PATCH("/sessions/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.EditSessionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := common.EditDraftSession(utils.MustUUID(params.ID), &body); err != nil {
				if err == gorm.ErrRecordNotFound {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "draft session not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/sessions/:id/complete", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			count, err := common.CompleteSession(utils.MustUUID(params.ID))
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
					return
				}
				log.Printf("[sessions] Error completing session %s: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"bookings_completed": count})
		}).
		POST("/sessions/:id/cancel", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CancelSessionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			notify := body.NotifyParents == nil || *body.NotifyParents
			actorID := utils.MustUUID(ctx.GetString("id"))
			notified, err := common.CancelSessionWithBookings(utils.MustUUID(params.ID), actorID, body.Reason, notify)
			if err != nil {
				log.Printf("[sessions] Error cancelling session %s: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"notified_parents": notified})
		}).
		POST("/sessions/:id/replace-instructor", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ReplaceInstructorRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			notify := body.NotifyParents == nil || *body.NotifyParents
			notified, err := common.ReplaceSessionInstructor(utils.MustUUID(params.ID), utils.MustUUID(body.NewInstructorID), notify)
			if err != nil {
				log.Printf("[sessions] Error replacing instructor on %s: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"notified_parents": notified})
		})
	return g
}
