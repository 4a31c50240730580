package main

import (
	"errors"
	"log"
	"net/http"

	"swimops/src/common"
	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			parentId := ctx.GetString("id")
			roles := ctx.GetStringSlice("roles")
			db := db.GetDb()
			q := db.
				Model(&models.Booking{}).
				Preload("Session").
				Preload("Session.Instructor").
				Preload("Swimmer")
			if !utils.HasRole(roles, types.ROLE_ADMIN) {
				q = q.Where("parent_id = ?", parentId)
			}
			var bookings []models.Booking
			if err := q.Find(&bookings).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			parentId := ctx.GetString("id")
			roles := ctx.GetStringSlice("roles")
			db := db.GetDb()
			q := db.
				Model(&models.Booking{}).
				Where("id = ?", params.ID).
				Preload("Session").
				Preload("Swimmer")
			if !utils.HasRole(roles, types.ROLE_ADMIN) {
				q = q.Where("parent_id = ?", parentId)
			}
			var booking models.Booking
			if err := q.First(&booking).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actorID := utils.MustUUID(ctx.GetString("id"))
			isAdmin := utils.HasRole(ctx.GetStringSlice("roles"), types.ROLE_ADMIN)
			err := common.CancelBooking(utils.MustUUID(params.ID), actorID, body.Reason, isAdmin)
			if err != nil {
				var late *common.LateCancellation
				if errors.As(err, &late) {
					ctx.JSON(http.StatusBadRequest, gin.H{
						"error":              "late_cancellation",
						"cannotCancelInApp":  true,
						"hoursBeforeSession": late.HoursBeforeSession,
						"contactPhone":       late.ContactPhone,
						"contactType":        late.ContactType,
					})
					return
				}
				if errors.Is(err, common.ErrNotBookingOwner) {
					ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
					return
				}
				if errors.Is(err, common.ErrSessionStarted) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "session_started"})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/bookings/cancel-block", func(ctx *gin.Context) {
			var body types.BlockCancelRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actorID := utils.MustUUID(ctx.GetString("id"))
			isAdmin := utils.HasRole(ctx.GetStringSlice("roles"), types.ROLE_ADMIN)
			result, err := common.BlockCancel(
				utils.MustUUID(body.SwimmerID),
				utils.MustUUID(body.BatchID),
				actorID,
				body.Reason,
				isAdmin,
			)
			if err != nil {
				log.Printf("Error processing block cancel: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		})
	return g
}
