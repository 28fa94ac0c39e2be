package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// insecureSecret is the fallback session secret. Deployments must set
// SECRET_KEY; the fallback only exists so local development works.
const insecureSecret = "dev_secret_change_me"

// Config holds the runtime settings read from the environment.
type Config struct {
	Port       string
	SecretKey  string
	DataDir    string
	UploadsDir string
}

// Load reads configuration from the environment, loading a .env file
// first when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:       GetEnv("PORT", "8080"),
		SecretKey:  GetEnv("SECRET_KEY", insecureSecret),
		DataDir:    GetEnv("DATA_DIR", "instance"),
		UploadsDir: GetEnv("UPLOAD_DIR", "uploads"),
	}
	if cfg.SecretKey == insecureSecret {
		log.Println("Warning: SECRET_KEY not set, using insecure default")
	}
	return cfg
}

// DBPath returns the location of the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "app.db")
}

// EnsureDirectories creates the data and uploads directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.UploadsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
