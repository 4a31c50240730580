package middlewares

import (
	"log"
	"net/http"
	"os"
	"strings"

	"swimops/src/db"
	"swimops/src/models"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		ctx.AbortWithError(http.StatusUnauthorized, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	db := db.GetDb()
	var profile models.Profile
	if err := db.
		Model(&models.Profile{}).
		Where(&models.Profile{ID: uid}).
		Preload("Roles").
		First(&profile).
		Error; err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	roles := profile.RoleNames()
	if len(roles) == 0 {
		roles = []string{types.ROLE_PARENT}
	}
	ctx.Set("email", profile.Email)
	ctx.Set("id", profile.ID.String())
	ctx.Set("role", roles[0])
	ctx.Set("roles", roles)
	ctx.Set("identity", types.Identity{ID: profile.ID, Email: profile.Email, Roles: roles})
}

// RequireRole guards a route group with the pure role predicate over the
// identity the auth middleware stored on the context.
func RequireRole(want ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		roles := ctx.GetStringSlice("roles")
		if !utils.HasRole(roles, want...) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
	}
}

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	ctx.Next()
}

// VerifySharedSecret protects the guest auth routes with the deploy-time
// shared secret presented by trusted frontends.
func VerifySharedSecret(ctx *gin.Context) {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return
	}
	if ctx.Request.Header.Get("x-secret") != secret {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
}
