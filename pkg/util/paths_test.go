package util

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSetAppNameRecomputesPaths(t *testing.T) {
	orig := ConfiguredAppName
	t.Cleanup(func() {
		ConfiguredAppName = orig
		recomputePaths()
	})

	SetAppName("My App/Test")
	if EffectiveAppName() != "my-app-test" {
		t.Fatalf("EffectiveAppName = %q", EffectiveAppName())
	}
	if !strings.Contains(ApplicationSupportPath, filepath.Join(".local", "share", "my-app-test")) {
		t.Fatalf("support path %q not derived from app name", ApplicationSupportPath)
	}
	if !strings.Contains(ApplicationLogsPath, filepath.Join(".local", "state", "my-app-test", "logs")) {
		t.Fatalf("logs path %q not derived from app name", ApplicationLogsPath)
	}

	// Blank names are ignored rather than clearing the configured name.
	SetAppName("   ")
	if EffectiveAppName() != "my-app-test" {
		t.Fatalf("blank SetAppName changed name to %q", EffectiveAppName())
	}
}

func TestDerivedPaths(t *testing.T) {
	if filepath.Base(GetSettingsDBPath()) != "settings.db" {
		t.Fatalf("GetSettingsDBPath = %q", GetSettingsDBPath())
	}
	if filepath.Base(GetBlobDirPath()) != "blobs" {
		t.Fatalf("GetBlobDirPath = %q", GetBlobDirPath())
	}
}
