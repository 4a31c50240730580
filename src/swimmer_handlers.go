package main

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"swimops/src/config"
	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func swimmerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/swimmers", func(ctx *gin.Context) {
			roles := ctx.GetStringSlice("roles")
			db := db.GetDb()
			q := db.Model(&models.Swimmer{}).Preload("FundingSource")
			if !utils.HasRole(roles, types.ROLE_ADMIN) {
				q = q.Where("parent_id = ?", ctx.GetString("id"))
			}
			if status := ctx.Query("enrollment_status"); status != "" {
				q = q.Where("enrollment_status = ?", status)
			}
			var swimmers []models.Swimmer
			if err := q.Order("first_name asc").Find(&swimmers).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": swimmers, "count": len(swimmers)})
		}).
		GET("/swimmers/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			roles := ctx.GetStringSlice("roles")
			db := db.GetDb()
			q := db.Where("id = ?", params.ID).Preload("FundingSource")
			if !utils.HasRole(roles, types.ROLE_ADMIN) {
				q = q.Where("parent_id = ?", ctx.GetString("id"))
			}
			var swimmer models.Swimmer
			if err := q.First(&swimmer).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": swimmer})
		})
	return g
}

func adminSwimmerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/swimmers", func(ctx *gin.Context) {
			var body types.CreateSwimmerRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var parent models.Profile
			if err := db.Where("id = ?", body.ParentID).First(&parent).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "parent not found"})
				return
			}
			swimmer := models.Swimmer{
				FirstName:   body.FirstName,
				LastName:    body.LastName,
				ParentID:    parent.ID,
				PaymentType: types.PaymentType(body.PaymentType),
				Notes:       body.Notes,
			}
			if body.DateOfBirth != nil {
				dob, err := time.Parse(config.DATE_PARSE_FORMAT, *body.DateOfBirth)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				swimmer.DateOfBirth = &dob
			}
			if body.FundingSourceID != nil {
				id := utils.MustUUID(*body.FundingSourceID)
				swimmer.FundingSourceID = &id
			}
			if swimmer.PaymentType == types.PAYMENT_FUNDED && swimmer.FundingSourceID == nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "funded swimmers require a funding source"})
				return
			}
			if err := db.Create(&swimmer).Error; err != nil {
				log.Printf("Could not create swimmer: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": swimmer})
		}).
		PATCH("/swimmers/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateSwimmerRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var swimmer models.Swimmer
			if err := db.Where("id = ?", params.ID).First(&swimmer).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.FirstName != nil {
				updates["first_name"] = *body.FirstName
			}
			if body.LastName != nil {
				updates["last_name"] = *body.LastName
			}
			if body.EnrollmentStatus != nil {
				updates["enrollment_status"] = *body.EnrollmentStatus
			}
			if body.PaymentType != nil {
				updates["payment_type"] = *body.PaymentType
			}
			if body.FundingSourceID != nil {
				updates["funding_source_id"] = *body.FundingSourceID
			}
			if body.WaiverCompleted != nil {
				if *body.WaiverCompleted {
					updates["waiver_completed_at"] = time.Now()
				} else {
					updates["waiver_completed_at"] = nil
				}
			}
			if body.Notes != nil {
				updates["notes"] = *body.Notes
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
				return
			}
			if err := db.Model(&swimmer).Updates(updates).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": swimmer})
		}).
		POST("/swimmers/:id/transfer", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.TransferClientRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			email := strings.ToLower(strings.TrimSpace(body.CoordinatorEmail))
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var swimmer models.Swimmer
				if err := tx.Where("id = ?", params.ID).First(&swimmer).Error; err != nil {
					return err
				}
				updates := map[string]any{
					"coordinator_email": email,
					"coordinator_name":  body.CoordinatorName,
				}
				// Link the coordinator's account, creating one for a new email.
				var coordinator models.Profile
				err := tx.Where("email = ?", email).First(&coordinator).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					coordinator = models.Profile{Email: email, FullName: body.CoordinatorName}
					if err := tx.Create(&coordinator).Error; err != nil {
						return err
					}
					role := models.UserRole{UserID: coordinator.ID, Role: types.ROLE_COORDINATOR}
					if err := tx.Create(&role).Error; err != nil {
						return err
					}
				} else if err != nil {
					return err
				}
				updates["coordinator_id"] = coordinator.ID
				return tx.Model(&swimmer).Updates(updates).Error
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/swimmers/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var swimmer models.Swimmer
			if err := db.Where("id = ?", params.ID).First(&swimmer).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			var active int64
			if err := db.Model(&models.Booking{}).
				Where("swimmer_id = ?", swimmer.ID).
				Where("status = ?", types.BOOKING_CONFIRMED).
				Count(&active).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if active > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "Cannot delete swimmer with active bookings"})
				return
			}
			if err := db.Delete(&swimmer).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
