package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	MidThreshold  int
	LongThreshold int
	ClosedFile    string
	DbDsn         string
	TgToken       string
	TgChatID      int64
}

var (
	config *Config
	once   sync.Once
)

var defaults = map[string]string{
	"LISTEN_ADDR":           ":8050",
	"MID_THRESHOLD":         "5000",
	"LONG_THRESHOLD":        "10000",
	"DASHBOARD_CLOSED_FILE": "dashboard_closed",
}

// GetConfig returns the process wide configuration read from the environment and .env.
func GetConfig() *Config {
	once.Do(func() {
		var err error
		config, err = Load()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	})
	return config
}

// Load reads the given env files (.env when none is given). Process environment wins
// over file values. A missing file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fileValues := map[string]string{}
	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Printf("config: %s not found, using environment", f)
				continue
			}
			return nil, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range values {
			fileValues[k] = v
		}
	}

	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		if v, ok := fileValues[key]; ok {
			return v
		}
		return defaults[key]
	}

	cfg := &Config{
		ListenAddr: get("LISTEN_ADDR"),
		ClosedFile: get("DASHBOARD_CLOSED_FILE"),
		DbDsn:      get("DB_DSN"),
		TgToken:    get("TG_TOKEN"),
	}
	var err error
	if cfg.MidThreshold, err = strconv.Atoi(get("MID_THRESHOLD")); err != nil {
		return nil, fmt.Errorf("config: MID_THRESHOLD: %w", err)
	}
	if cfg.LongThreshold, err = strconv.Atoi(get("LONG_THRESHOLD")); err != nil {
		return nil, fmt.Errorf("config: LONG_THRESHOLD: %w", err)
	}
	if cfg.MidThreshold >= cfg.LongThreshold {
		return nil, fmt.Errorf("config: MID_THRESHOLD %d must be lower than LONG_THRESHOLD %d", cfg.MidThreshold, cfg.LongThreshold)
	}
	if chat := get("TG_CHAT_ID"); chat != "" {
		if cfg.TgChatID, err = strconv.ParseInt(chat, 10, 64); err != nil {
			return nil, fmt.Errorf("config: TG_CHAT_ID: %w", err)
		}
	}
	return cfg, nil
}
