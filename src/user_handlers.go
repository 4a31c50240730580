package main

import (
	"net/http"

	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/users", func(ctx *gin.Context) {
			db := db.GetDb()
			q := db.Model(&models.Profile{}).Preload("Roles")
			if role := ctx.Query("role"); role != "" {
				q = q.
					Joins("JOIN user_roles ON user_roles.user_id = profiles.id").
					Where("user_roles.role = ?", role)
			}
			var users []models.Profile
			if err := q.Order("full_name asc").Find(&users).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users, "count": len(users)})
		}).
		GET("/users/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var user models.Profile
			if err := db.
				Where("id = ?", params.ID).
				Preload("Roles").
				Preload("Swimmers").
				First(&user).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		DELETE("/users/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var user models.Profile
			if err := db.Where("id = ?", params.ID).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			var linked int64
			if err := db.Model(&models.Swimmer{}).Where("parent_id = ?", user.ID).Count(&linked).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if linked > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "Cannot delete user with linked swimmers"})
				return
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
					return err
				}
				return tx.Delete(&user).Error
			})
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
