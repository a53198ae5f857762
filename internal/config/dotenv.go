package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// LoadDotEnv loads the given .env files, then .env in the working directory.
// Missing files are skipped and existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	for _, path := range append(paths, ".env") {
		if path == "" {
			continue
		}
		if err := loadIfExists(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadDotEnvForConfig loads .env next to the configuration file.
func LoadDotEnvForConfig(configPath string) error {
	if configPath == "" {
		return nil
	}
	return loadIfExists(filepath.Join(filepath.Dir(configPath), ".env"))
}

func loadIfExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}
