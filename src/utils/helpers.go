package utils

import (
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"swimops/src/config"
	"swimops/src/models"
	"swimops/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func IsProd() bool {
	return config.API_ENV == string(types.Production)
}

// WithSuffix appends the environment name to queue and topic names so
// parallel deployments never consume each other's messages.
func WithSuffix(name string) string {
	env := os.Getenv("API_ENV")
	if env == "" {
		return name
	}
	return fmt.Sprintf("%s-%s", name, env)
}

func GenerateJWT(email string, id uuid.UUID, role string, roles []string) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		Email: email,
		Role:  role,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(72 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	if err != nil {
		log.Printf("Error signing token: %s\n", err.Error())
		return "", err
	}
	return signed, nil
}

// HasRole is the single role predicate for the whole API. It reads only the
// request-scoped identity, never the database.
func HasRole(roles []string, want ...string) bool {
	for _, r := range roles {
		for _, w := range want {
			if r == w {
				return true
			}
		}
	}
	return false
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(config.DATE_PARSE_FORMAT, s)
}

// CombineDateClock builds a full timestamp from a calendar date and an HH:MM
// clock value, both in the pool's local zone.
func CombineDateClock(date string, clock string) (time.Time, error) {
	d, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, date, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	c, err := time.Parse(config.CLOCK_PARSE_FORMAT, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, time.Local), nil
}

// HoursUntil reports the hours between now and a session start, rounded to
// one decimal for the late-cancellation payload.
func HoursUntil(now, start time.Time) float64 {
	return math.Round(start.Sub(now).Hours()*10) / 10
}

// UpdateSessionStatus flips a session's status only when it still holds the
// expected one, with a row lock inside the transaction.
func UpdateSessionStatus(tx *gorm.DB, id uuid.UUID, newStatus types.SessionStatus, oldStatus types.SessionStatus) error {
	var session models.Session
	conds := &models.Session{ID: id, Status: oldStatus}
	if err := tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: clause.CurrentTable},
		}).
		Where(conds).
		First(&session).
		Error; err != nil {
		log.Printf("Failed to lock session for status update: %s\n", err.Error())
		return err
	}
	if err := tx.
		Model(&models.Session{}).
		Where(conds).
		Update("status", newStatus).
		Error; err != nil {
		log.Printf("Session status update did not complete successfully: %s\n", err.Error())
		return err
	}
	return nil
}

// MustUUID parses ids already validated by the uuid binding tag.
func MustUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}
