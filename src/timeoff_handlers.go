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

// Instructors file their own requests; admins list and review everyone's.
func timeOffHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/time-off", func(ctx *gin.Context) {
			var filters types.TimeOffQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			roles := ctx.GetStringSlice("roles")
			db := db.GetDb()
			q := db.Model(&models.TimeOffRequest{}).Preload("Instructor").Preload("Reviewer")
			if !utils.HasRole(roles, types.ROLE_ADMIN) {
				q = q.Where("instructor_id = ?", ctx.GetString("id"))
			} else if filters.InstructorID != "" {
				q = q.Where("instructor_id = ?", filters.InstructorID)
			}
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			}
			if filters.StartDate != "" {
				q = q.Where("end_date >= ?", filters.StartDate)
			}
			if filters.EndDate != "" {
				q = q.Where("start_date <= ?", filters.EndDate)
			}
			var requests []models.TimeOffRequest
			if err := q.Order("start_date asc").Find(&requests).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests, "count": len(requests)})
		}).
		POST("/time-off", func(ctx *gin.Context) {
			var body types.CreateTimeOffRequestBody
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
			request := models.TimeOffRequest{
				InstructorID: utils.MustUUID(ctx.GetString("id")),
				StartDate:    startDate,
				EndDate:      endDate,
				IsAllDay:     body.IsAllDay == nil || *body.IsAllDay,
				ReasonType:   types.TimeOffReason(body.ReasonType),
				Reason:       body.Reason,
			}
			db := db.GetDb()
			if err := db.Create(&request).Error; err != nil {
				log.Printf("Could not create time off request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": request})
		})
	return g
}

func adminTimeOffHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/time-off/:id/conflicts", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			conflicts, err := common.ConflictsForTimeOff(utils.MustUUID(params.ID))
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": conflicts})
		}).
		PATCH("/time-off/:id/review", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.ReviewTimeOffRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reviewerID := utils.MustUUID(ctx.GetString("id"))
			request, err := common.ReviewTimeOff(utils.MustUUID(params.ID), reviewerID, types.TimeOffStatus(body.Status), body.AdminNotes)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": request})
		})
	return g
}
