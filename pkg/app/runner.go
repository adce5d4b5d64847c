// Package app bootstraps the settings console: paths, logging, the durable
// store, the catalog, the Discord session and the bridge, in that order.
package app

import (
	"fmt"
	"os"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
	"github.com/small-frappuccino/mirrorcore/pkg/console"
	"github.com/small-frappuccino/mirrorcore/pkg/discord/bridge"
	"github.com/small-frappuccino/mirrorcore/pkg/discord/session"
	"github.com/small-frappuccino/mirrorcore/pkg/log"
	"github.com/small-frappuccino/mirrorcore/pkg/sideeffects"
	"github.com/small-frappuccino/mirrorcore/pkg/storage"
	"github.com/small-frappuccino/mirrorcore/pkg/theme"
	"github.com/small-frappuccino/mirrorcore/pkg/util"
)

// Run bootstraps the console and blocks until shutdown. appName affects the
// support and log paths; tokenEnv names the environment variable holding the
// bot token. The variable is read from the process environment first and
// from a $HOME/.local/bin/.env fallback second.
func Run(appName, tokenEnv string) error {
	// App name first, it decides every on-disk path.
	util.SetAppName(appName)

	token, loadErr := util.LoadEnvWithLocalBinFallback(tokenEnv)

	if err := log.Setup(); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	defer log.Close()

	if loadErr != nil {
		log.Application().Warn("Environment fallback failed", "error", loadErr)
	}
	if token == "" {
		return fmt.Errorf("%s not set in environment or .env file", tokenEnv)
	}

	if name := os.Getenv("MIRRORCORE_THEME"); name != "" {
		if err := theme.SetCurrent(name); err != nil {
			log.Application().Warn("Failed to apply theme", "theme", name, "error", err)
		}
	}

	log.Application().Info("Starting", "app", appName)

	if err := util.EnsureSupportDirs(); err != nil {
		return fmt.Errorf("create support directories: %w", err)
	}

	dbPath := util.GetSettingsDBPath()
	if v := os.Getenv("MIRRORCORE_SETTINGS_DB"); v != "" {
		dbPath = v
	}
	store := storage.NewStore(dbPath)
	if err := store.Init(); err != nil {
		return fmt.Errorf("initialize settings store: %w", err)
	}
	defer store.Close()

	// Catalog starts at defaults, then persisted values overlay them. A bad
	// row is skipped with a warning instead of blocking startup.
	cat := catalog.New()
	persisted, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("load persisted settings: %w", err)
	}
	for _, loadErr := range cat.LoadValues(persisted) {
		log.Database().Warn("Skipping persisted setting", "error", loadErr)
	}
	log.Database().Info("Settings loaded", "persisted", len(persisted))

	discordSession, err := session.New(token)
	if err != nil {
		return err
	}
	defer discordSession.Close()
	if discordSession.State == nil || discordSession.State.User == nil {
		return fmt.Errorf("discord session state not properly initialized")
	}
	log.Discord().Info("Authenticated", "user", discordSession.State.User.Username)

	effects := sideeffects.New()
	effects.Register(catalog.MediaToolsKey, func(key string, value any) error {
		enabled, _ := value.(string)
		log.Application().Info("Media tool set changed", "enabled", enabled)
		return nil
	})

	br := bridge.New(discordSession)
	cons, err := console.New(console.Config{
		Catalog:   cat,
		Store:     store,
		Effects:   effects,
		Blobs:     bridge.NewFileBlobHandler(util.GetBlobDirPath()),
		Messenger: br,
		Cascade: func(member string) []string {
			return cat.KeysWithPrefix(catalog.ToolPrefixes(member)...)
		},
	})
	if err != nil {
		return err
	}
	br.SetConsole(cons)
	if err := br.Start(); err != nil {
		return fmt.Errorf("start bridge: %w", err)
	}

	log.Application().Info("Console ready", "command", bridge.CommandName)
	util.WaitForInterrupt()
	log.Application().Info("Shutting down")
	return nil
}
