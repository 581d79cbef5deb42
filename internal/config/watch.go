package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/fvclaus/winmon/internal/logger"
)

// Watch reloads the config file when it changes on disk and invokes
// onChange with the new configuration. The watch is placed on the config
// directory rather than the file itself so editors that replace the file
// (write to temp, rename over) are still observed. The returned function
// stops the watcher.
func (m *Manager) Watch(onChange func(*Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	log := logger.WithComponent("config")

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(m.configPath) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := m.load(); err != nil {
					log.Warn().Err(err).Msg("Failed to reload config")
					continue
				}
				log.Info().Str("path", m.configPath).Msg("Config reloaded")
				onChange(m.Get())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Config watcher error")
			}
		}
	}()

	return func() {
		if err := watcher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close config watcher")
		}
	}, nil
}
