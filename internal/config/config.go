package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port                 string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	AllowedUsers         []int64
	DatabaseURL          string
	LocalTimezone        *time.Location
}

// Load reads configuration values and prepares defaults where applicable.
// Missing transport credentials are a startup error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := getenvDefault("PORT", "8080")
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	whatsAppNumber := os.Getenv("TWILIO_WHATSAPP_NUMBER")
	databaseURL := os.Getenv("DATABASE_URL")
	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")

	if accountSID == "" || authToken == "" || whatsAppNumber == "" {
		return nil, fmt.Errorf("config: TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_NUMBER must be set")
	}

	allowed := ParseAllowedUsers(os.Getenv("ALLOWED_USERS"))
	if len(allowed) == 0 {
		log.Printf("config: ALLOWED_USERS is empty, nobody will be able to interact")
	}

	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	return &Config{
		Port:                 port,
		TwilioAccountSID:     accountSID,
		TwilioAuthToken:      authToken,
		TwilioWhatsAppNumber: whatsAppNumber,
		AllowedUsers:         allowed,
		DatabaseURL:          databaseURL,
		LocalTimezone:        location,
	}, nil
}

// ParseAllowedUsers parses a comma-separated list of numeric user ids.
// Entries that do not parse are logged and skipped.
func ParseAllowedUsers(raw string) []int64 {
	var users []int64
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			log.Printf("config: skipping non-numeric ALLOWED_USERS entry %q", field)
			continue
		}
		users = append(users, id)
	}
	return users
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}
