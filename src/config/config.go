package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

var API_ENV = os.Getenv("API_ENV")

const (
	TIME_PARSE_FORMAT  = "2006-01-02 15:04:05 -07:00"
	DATE_PARSE_FORMAT  = "2006-01-02"
	CLOCK_PARSE_FORMAT = "15:04"
	MONTH_YEAR_FORMAT  = "2006-01"
)

// Cancellations inside the cutoff have to go through the front desk.
const (
	CANCELLATION_CUTOFF_HOURS = 24
	CONTACT_PHONE             = "(209) 643-7969"
)
