// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configurable values for the app.
type Config struct {
	Env               string
	Addr              string
	APIBaseURL        string
	AllowedHosts      []string
	AllowedImageHosts []string
	CookieTTL         time.Duration
	CookieSecure      bool
	RequestTimeout    time.Duration
}

// Load reads environment variables and populates a Config struct.
func Load() *Config {
	cookieTTL, err := time.ParseDuration(getEnv("COOKIE_TTL", "168h"))
	if err != nil {
		log.Panicf("Invalid COOKIE_TTL: %v", err)
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "true"))
	if err != nil {
		log.Panicf("Invalid COOKIE_SECURE: %v", err)
	}

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		log.Panicf("Invalid REQUEST_TIMEOUT: %v", err)
	}

	return &Config{
		Env:               getEnv("ENV", "development"),
		Addr:              getEnv("ADDR", ":8080"),
		APIBaseURL:        getEnv("API_BASE_URL", "https://skilltestnextjs.evidam.zybotechlab.com/api"),
		AllowedHosts:      getEnvList("ALLOWED_HOSTS", "skilltestnextjs.evidam.zybotechlab.com"),
		AllowedImageHosts: getEnvList("ALLOWED_IMAGE_HOSTS", "skilltestnextjs.evidam.zybotechlab.com,localhost"),
		CookieTTL:         cookieTTL,
		CookieSecure:      cookieSecure,
		RequestTimeout:    requestTimeout,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
