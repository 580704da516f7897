package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAllowedUsers(t *testing.T) {
	t.Parallel()

	cases := map[string][]int64{
		"100":              {100},
		"100,200":          {100, 200},
		" 100 , 200 ":      {100, 200},
		"":                 nil,
		" , ,":             nil,
		"100,bogus,200":    {100, 200},
		"-5":               {-5},
		"15551234567":      {15551234567},
	}

	for raw, want := range cases {
		require.Equal(t, want, ParseAllowedUsers(raw), "input %q", raw)
	}
}

func setTwilioEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TWILIO_ACCOUNT_SID", "ACxxx")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "+15550009999")
}

func TestLoadRequiresTwilioCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	setTwilioEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_USERS", "100,200")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOCAL_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, []int64{100, 200}, cfg.AllowedUsers)
	require.Empty(t, cfg.DatabaseURL)
	require.Equal(t, time.UTC, cfg.LocalTimezone)
}

func TestLoadBadTimezoneFallsBack(t *testing.T) {
	setTwilioEnv(t)
	t.Setenv("LOCAL_TIMEZONE", "Nowhere/Imaginary")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Local, cfg.LocalTimezone)
}
