package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"swimops/src/db"
	"swimops/src/lib"
	"swimops/src/types"
	"swimops/src/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-co-op/gocron/v2"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Mock  *sqlmock.Sqlmock
	Token *string
}

var testJwtKey = []byte(os.Getenv("JWT_SECRET"))

// authMiddleware trusts the token claims directly so routes can be
// exercised without a profile row behind the mock connection.
func authMiddleware(ctx *gin.Context) {
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
		return testJwtKey, nil
	})
	if err != nil || !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("email", claims.Email)
	ctx.Set("id", claims.Subject)
	ctx.Set("role", claims.Role)
	ctx.Set("roles", claims.Roles)
}

func (s *TestSuite) SetupSuite() {
	os.Setenv("API_ENV", string(types.Test))
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", futureDateValidatorFunc)
		v.RegisterValidation("clocktime", clockTimeValidatorFunc)
		v.RegisterValidation("gtdate", gtDateValidatorFunc)
	}

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = &mock
	lib.NewRedisClient(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
	if sched, err := gocron.NewScheduler(); err == nil {
		lib.NewScheduler(sched)
	}

	adminId := uuid.New()
	token, err := utils.GenerateJWT("admin@example.com", adminId, types.ROLE_ADMIN, []string{types.ROLE_ADMIN})
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
		return
	}
	s.Token = &token
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

const (
	secret = "secret"
	origin = "http://localhost:3000"
)

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestHealthRoute() {
	router := setupRouter()
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), "ok", gjson.Get(string(rbytes), "status").String())
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAuthRoutes() {
	router := setupRouter()
	guestAuthRoutes(router)

	w := httptest.NewRecorder()

	jbody := map[string]any{
		"email": "someone@example.com",
	}
	sbody, _ := json.Marshal(&jbody)
	loginReq, _ := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(string(sbody)))
	loginReq.Header.Set("x-secret", secret)
	loginReq.Header.Set("origin", origin)
	router.ServeHTTP(w, loginReq)

	assert.Equal(s.T(), 404, w.Code)

	w = httptest.NewRecorder()

	registerReq, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
	registerReq.Header.Set("x-secret", secret)
	registerReq.Header.Set("origin", origin)
	router.ServeHTTP(w, registerReq)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestGenerateSessionsValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(authMiddleware)
	adminSessionHandlers(apiv1)

	token := *s.Token

	s.Run("Should reject an unauthenticated request", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/sessions/generate", strings.NewReader("{}"))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should return a 400 error response for a bad body", func() {
		w := httptest.NewRecorder()
		reqBody := map[string]any{
			"mode":       "next_month",
			"start_time": "not-a-clock",
			"end_time":   "17:00",
		}
		rbytes, err := json.Marshal(&reqBody)
		assert.Nil(s.T(), err)
		req, _ := http.NewRequest("POST", "/api/v1/sessions/generate", strings.NewReader(string(rbytes)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)

		resbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		errMsg := gjson.Get(string(resbytes), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})
}

func (s *TestSuite) TestTimeOffRequestValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(authMiddleware)
	timeOffHandlers(apiv1)

	token := *s.Token

	s.Run("Should reject an unknown reason type", func() {
		w := httptest.NewRecorder()
		reqBody := map[string]any{
			"start_date":  "2099-06-01",
			"end_date":    "2099-06-03",
			"reason_type": "sabbatical",
		}
		rbytes, err := json.Marshal(&reqBody)
		assert.Nil(s.T(), err)
		req, _ := http.NewRequest("POST", "/api/v1/time-off", strings.NewReader(string(rbytes)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a request without a reason type", func() {
		w := httptest.NewRecorder()
		reqBody := map[string]any{
			"start_date": "2099-06-01",
			"end_date":   "2099-06-03",
		}
		rbytes, err := json.Marshal(&reqBody)
		assert.Nil(s.T(), err)
		req, _ := http.NewRequest("POST", "/api/v1/time-off", strings.NewReader(string(rbytes)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestDeleteFundingSourceCountFailure() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(authMiddleware)
	fundingSourceHandlers(apiv1)

	token := *s.Token
	sourceId := uuid.New()

	mock := *s.Mock
	mock.ExpectQuery(`SELECT (.+) FROM "funding_sources" WHERE id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(sourceId.String(), "Jordan's Principle"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "swimmers"`).
		WillReturnError(fmt.Errorf("connection reset"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/v1/funding-sources/%s", sourceId), nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	router.ServeHTTP(w, req)

	// The delete must not proceed when the linked-swimmer count fails.
	assert.Equal(s.T(), 422, w.Code)
	assert.Nil(s.T(), mock.ExpectationsWereMet())
}

func (s *TestSuite) TestUpdatePurchaseOrderValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(authMiddleware)
	poHandlers(apiv1)

	token := *s.Token
	poId := uuid.NewString()

	s.Run("Should reject an update with no fields", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", fmt.Sprintf("/api/v1/pos/%s", poId), strings.NewReader("{}"))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a negative sessions_booked", func() {
		w := httptest.NewRecorder()
		reqBody := map[string]any{
			"sessions_booked": -1,
		}
		rbytes, err := json.Marshal(&reqBody)
		assert.Nil(s.T(), err)
		req, _ := http.NewRequest("PATCH", fmt.Sprintf("/api/v1/pos/%s", poId), strings.NewReader(string(rbytes)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
