package lrsynclib

import (
	"encoding/json"
	"os"
)

// Config contains all configuration parameters for the application.
// The per-invocation values (gallery URL, destinations) normally come
// from the command line; the slow-moving ones can be kept in a json
// config file read through LoadConfiguration.
type Config struct {
	GalleryURL       string   `json:"gallery_url"`
	FolderID         string   `json:"folder_id"`
	AlbumName        string   `json:"album_name"`
	StagingDir       string   `json:"staging_dir"`
	ClientSecretFile string   `json:"client_secret_file"`
	TokenCacheFile   string   `json:"token_cache_file"`
	Extensions       []string `json:"extensions"`
	LogLevel         string   `json:"log_level"`
	AbortOnError     bool     `json:"abort_on_error"`
}

// LoadConfiguration reads a json configuration file and returns
// a Config
func LoadConfiguration(filename string) (Config, error) {
	var config Config
	raw, err := os.ReadFile(filename)

	if err != nil {
		log.Error(err.Error())
		return config, err
	}

	if err := json.Unmarshal(raw, &config); err != nil {
		log.Error(err.Error())
		return config, err
	}
	return config, nil
}

// Validate checks the invocation before any network or filesystem
// activity happens. Both failure modes are ConfigurationErrors: a
// missing gallery URL, and no destination at all.
func (c *Config) Validate() error {
	if c.GalleryURL == "" {
		return &ConfigurationError{Reason: "gallery_url is required"}
	}
	if c.FolderID == "" && c.AlbumName == "" {
		return &ConfigurationError{Reason: "at least one of folder_id or album_name must be specified"}
	}
	return nil
}

func (c *Config) stagingDir() string {
	if c.StagingDir == "" {
		return "photos"
	}
	return c.StagingDir
}

func (c *Config) clientSecretFile() string {
	if c.ClientSecretFile == "" {
		return "client_secret.json"
	}
	return c.ClientSecretFile
}

func (c *Config) tokenCacheFile() string {
	if c.TokenCacheFile == "" {
		return "credentials"
	}
	return c.TokenCacheFile
}

func (c *Config) allowedExtensions() []string {
	if len(c.Extensions) == 0 {
		return []string{".png", ".jpg", ".jpeg"}
	}
	return c.Extensions
}
