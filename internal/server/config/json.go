package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/carshow/internal/flagx"
	"github.com/dmitrijs2005/carshow/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// accept "90s"-style strings. Only non-empty values override the defaults.
type JsonConfig struct {
	HTTPAddr                string         `json:"http_addr"`
	HealthAddr              string         `json:"health_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	LogLevel                string         `json:"log_level"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	InviteValidityDuration  timex.Duration `json:"invite_validity_duration"`
	PublicBaseURL           string         `json:"public_base_url"`
	MaxRegistrations        int            `json:"max_registrations"`
	RegistrationPriceCents  int64          `json:"registration_price_cents"`
	Currency                string         `json:"currency"`
	EventName               string         `json:"event_name"`
	EmailFrom               string         `json:"email_from"`
	EmailRetryBaseDelay     timex.Duration `json:"email_retry_base_delay"`
	ImageModel              string         `json:"image_model"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	S3PublicBaseURL         string         `json:"s3_public_base_url"`
	SpreadsheetID           string         `json:"spreadsheet_id"`
}

// parseJson overlays values from the file named by -c/-config. Without the
// flag nothing happens; an unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddr, c.HealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.Currency, c.Currency)
	setString(&config.EventName, c.EventName)
	setString(&config.EmailFrom, c.EmailFrom)
	setString(&config.ImageModel, c.ImageModel)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setString(&config.SpreadsheetID, c.SpreadsheetID)

	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.InviteValidityDuration.Duration > 0 {
		config.InviteValidityDuration = c.InviteValidityDuration.Duration
	}
	if c.EmailRetryBaseDelay.Duration > 0 {
		config.EmailRetryBaseDelay = c.EmailRetryBaseDelay.Duration
	}
	if c.MaxRegistrations > 0 {
		config.MaxRegistrations = c.MaxRegistrations
	}
	if c.RegistrationPriceCents > 0 {
		config.RegistrationPriceCents = c.RegistrationPriceCents
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
