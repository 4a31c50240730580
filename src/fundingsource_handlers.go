package main

import (
	"log"
	"net/http"

	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

func fundingSourceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/funding-sources", func(ctx *gin.Context) {
			db := db.GetDb()
			q := db.Model(&models.FundingSource{})
			if ctx.Query("active") == "true" {
				q = q.Where("active = ?", true)
			}
			var sources []models.FundingSource
			if err := q.Order("name asc").Find(&sources).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sources, "count": len(sources)})
		}).
		GET("/funding-sources/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var source models.FundingSource
			if err := db.Where("id = ?", params.ID).First(&source).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": source})
		}).
		POST("/funding-sources", func(ctx *gin.Context) {
			var body types.CreateFundingSourceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			source := models.FundingSource{
				Name:                  body.Name,
				ShortName:             body.ShortName,
				AllowedEmailDomains:   body.AllowedEmailDomains,
				AssessmentSessions:    1,
				LessonsPerPO:          12,
				PODurationMonths:      3,
				RenewalAlertThreshold: 11,
				ContactEmail:          body.ContactEmail,
				ContactPhone:          body.ContactPhone,
				Active:                true,
			}
			if source.ShortName == "" {
				source.ShortName = slug.Make(body.Name)
			}
			if body.AssessmentSessions != nil {
				source.AssessmentSessions = *body.AssessmentSessions
			}
			if body.LessonsPerPO != nil {
				source.LessonsPerPO = *body.LessonsPerPO
			}
			if body.PODurationMonths != nil {
				source.PODurationMonths = *body.PODurationMonths
			}
			if body.RenewalAlertThreshold != nil {
				source.RenewalAlertThreshold = *body.RenewalAlertThreshold
			}
			if body.Active != nil {
				source.Active = *body.Active
			}
			if errs := source.Validate(); len(errs) > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
				return
			}
			db := db.GetDb()
			if err := db.Create(&source).Error; err != nil {
				log.Printf("Could not create funding source: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": source})
		}).
		PATCH("/funding-sources/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateFundingSourceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var source models.FundingSource
			if err := db.Where("id = ?", params.ID).First(&source).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			source.Name = body.Name
			if body.ShortName != "" {
				source.ShortName = body.ShortName
			}
			source.AllowedEmailDomains = body.AllowedEmailDomains
			if body.AssessmentSessions != nil {
				source.AssessmentSessions = *body.AssessmentSessions
			}
			if body.LessonsPerPO != nil {
				source.LessonsPerPO = *body.LessonsPerPO
			}
			if body.PODurationMonths != nil {
				source.PODurationMonths = *body.PODurationMonths
			}
			if body.RenewalAlertThreshold != nil {
				source.RenewalAlertThreshold = *body.RenewalAlertThreshold
			}
			if body.ContactEmail != nil {
				source.ContactEmail = body.ContactEmail
			}
			if body.ContactPhone != nil {
				source.ContactPhone = body.ContactPhone
			}
			if body.Active != nil {
				source.Active = *body.Active
			}
			if errs := source.Validate(); len(errs) > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
				return
			}
			if err := db.Save(&source).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": source})
		}).
		DELETE("/funding-sources/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var source models.FundingSource
			if err := db.Where("id = ?", params.ID).First(&source).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			var linked int64
			if err := db.Model(&models.Swimmer{}).Where("funding_source_id = ?", source.ID).Count(&linked).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if linked > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "Cannot delete funding source with linked swimmers"})
				return
			}
			if err := db.Delete(&source).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
