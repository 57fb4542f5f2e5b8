package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/carshow/internal/flagx"
)

const defaultEnvFile = ".env"

// parseEnv loads a dotenv file (the one named by -env-file, else ./.env when
// present) and then overlays every Config field whose env variable is set.
// Variables already present in the process environment win over the file.
func parseEnv(config *Config) {
	if err := loadDotEnv(flagx.EnvFileFlag()); err != nil {
		panic(err)
	}
	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}

func loadDotEnv(path string) error {
	if path == "" {
		err := godotenv.Load(defaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
