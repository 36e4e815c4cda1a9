package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// parseEnv loads dotenvPath (if it exists) into the process environment
// without overriding variables that are already set, then copies every
// recognised variable into config. Unset variables leave the current value
// alone. Malformed values panic, like malformed JSON config does.
//
// Recognised variables: HTTP_ADDR, STORAGE, DATABASE_DSN, SECRET_KEY,
// ACCESS_TOKEN_TTL (e.g. "30m"), BCRYPT_COST, CORS_ORIGINS (comma
// separated), SHUTDOWN_TIMEOUT, LOG_LEVEL.
func parseEnv(config *Config, dotenvPath string) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := envconfig.Process("", config); err != nil {
		panic(err)
	}
}
