package util

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	// ConfiguredAppName is set by the host before the Discord session exists;
	// all on-disk paths are derived from it.
	ConfiguredAppName string

	// ApplicationSupportPath is the base directory for durable state (settings DB, blobs).
	ApplicationSupportPath string

	// ApplicationLogsPath is the base directory for rotated log files.
	ApplicationLogsPath string
)

const defaultAppName = "mirrorcore"

func init() {
	recomputePaths()
}

// SetAppName sets the application name and recomputes base paths.
func SetAppName(name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	ConfiguredAppName = sanitizeName(name)
	recomputePaths()
}

// EffectiveAppName returns the configured application name, falling back to a default.
func EffectiveAppName() string {
	if n := strings.TrimSpace(ConfiguredAppName); n != "" {
		return n
	}
	return defaultAppName
}

func recomputePaths() {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	name := EffectiveAppName()
	ApplicationSupportPath = filepath.Join(home, ".local", "share", name)
	ApplicationLogsPath = filepath.Join(home, ".local", "state", name, "logs")
}

// GetSettingsDBPath returns the path of the SQLite settings mirror.
func GetSettingsDBPath() string {
	return filepath.Join(ApplicationSupportPath, "settings.db")
}

// GetBlobDirPath returns the directory where uploaded blobs (credential files,
// watermark images) are stored.
func GetBlobDirPath() string {
	return filepath.Join(ApplicationSupportPath, "blobs")
}

// GetLogDirPath returns the directory for log files.
func GetLogDirPath() string {
	return ApplicationLogsPath
}

// EnsureSupportDirs creates the support, blob and log directories.
func EnsureSupportDirs() error {
	for _, dir := range []string{ApplicationSupportPath, GetBlobDirPath(), ApplicationLogsPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-")
	return replacer.Replace(name)
}
