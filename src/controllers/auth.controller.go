package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"swimops/src/db"
	"swimops/src/lib"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	dbi := db.GetDb()
	var profile models.Profile
	if err = dbi.
		Model(&models.Profile{}).
		Where(&models.Profile{Email: email}).
		Preload("Roles").
		First(&profile).
		Error; err != nil {
		log.Printf("error: %s\n", err.Error())
		return nil, http.StatusNotFound, err
	}

	err = dbi.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			Update("last_active", time.Now()).
			Error
	})
	if err != nil {
		log.Printf("Error logging in user [%s]: %s\n", profile.ID.String(), err.Error())
		return nil, http.StatusBadRequest, err
	}

	roles := profile.RoleNames()
	if len(roles) == 0 {
		roles = []string{types.ROLE_PARENT}
	}
	jwt, err := utils.GenerateJWT(profile.Email, profile.ID, roles[0], roles)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	rd := lib.GetRedisClient()
	if rd != nil {
		if _, err := rd.JSONSet(ctx, fmt.Sprintf("%s:user", profile.ID.String()), "$", &profile).Result(); err != nil {
			log.Printf("[redis] Error updating user cache: %s\n", err.Error())
		}
	}

	return &jwt, http.StatusOK, nil
}

func AuthRegister(ctx *gin.Context) (id *string, status int, err error) {
	var body types.RegisterRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	dbi := db.GetDb()
	var profile models.Profile
	err = dbi.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.Profile{}).
			Where(&models.Profile{Email: email}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("an account already exists for %s", email)
		}
		profile = models.Profile{
			Email:    email,
			FullName: body.Name,
			Phone:    body.Phone,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		role := models.UserRole{UserID: profile.ID, Role: types.ROLE_PARENT}
		return tx.Create(&role).Error
	})
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	sid := profile.ID.String()
	return &sid, http.StatusOK, nil
}
