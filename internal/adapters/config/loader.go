// Package config provides the settings loader for pnp.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers the settings for the native directory cwd. The closest directory holding a
// config file or a state file becomes the project root. Environment overrides apply last and
// every path of the result is absolute and portable.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "cwd", cwd)
	}

	settings := domain.DefaultSettings()

	configPath, root, err := l.findConfiguration(cwd)
	switch {
	case errors.Is(err, domain.ErrConfigNotFound) && os.Getenv(EnvState) != "":
		root = cwd
	case err != nil:
		return nil, err
	}

	if configPath != "" {
		if err := readAndUnmarshalYAML(configPath, settings); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
	}

	if err := applyEnv(settings); err != nil {
		return nil, err
	}

	settings.Root = ppath.ToPortable(root)
	settings.State = resolvePath(settings.Root, settings.State)
	if settings.BasePath != "" {
		settings.BasePath = resolvePath(settings.Root, settings.BasePath)
	}
	if settings.APIPath != "" {
		settings.APIPath = resolvePath(settings.Root, settings.APIPath)
	}

	if err := validate(settings); err != nil {
		return nil, zerr.With(err, "root", settings.Root)
	}
	return settings, nil
}

// findConfiguration walks up from cwd. It returns the config file path, empty when only a
// state file was found, along with the directory holding it.
func (l *Loader) findConfiguration(cwd string) (string, string, error) {
	currentDir := cwd

	for {
		if configPath := l.configFileIn(currentDir); configPath != "" {
			return configPath, currentDir, nil
		}

		if _, err := os.Stat(filepath.Join(currentDir, domain.DefaultStateFile)); err == nil {
			return "", currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "configuration discovery failed"), "cwd", cwd)
}

func (l *Loader) configFileIn(dir string) string {
	var found []string
	for _, name := range []string{domain.ConfigFileName, domain.AltConfigFileName} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			found = append(found, candidate)
		}
	}

	if len(found) == 0 {
		return ""
	}
	if len(found) > 1 && l.Logger != nil {
		l.Logger.Warn(fmt.Sprintf("both %s and %s found in %s, using %s",
			domain.ConfigFileName, domain.AltConfigFileName, dir, domain.ConfigFileName))
	}
	return found[0]
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by the loader
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(domain.ErrConfigReadFailed, err.Error())
	}

	decoder := yaml.NewDecoder(bytes.NewReader(configFile))
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(domain.ErrConfigParseFailed, err.Error())
	}
	return nil
}

// resolvePath makes a native or portable path absolute against the portable root.
func resolvePath(root, p string) string {
	p = ppath.ToPortable(p)
	if ppath.IsAbsolute(p) {
		return ppath.Normalize(p)
	}
	return ppath.Join(root, p)
}

func validate(s *domain.Settings) error {
	switch {
	case s.CacheSize < 0:
		return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "cacheSize must not be negative"), "cacheSize", s.CacheSize)
	case s.Concurrency < 1:
		return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "concurrency must be at least 1"), "concurrency", s.Concurrency)
	case s.DebugLevel < 0:
		return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "debugLevel must not be negative"), "debugLevel", s.DebugLevel)
	}
	for _, ext := range s.Extensions {
		if ext == "" || ext[0] != '.' {
			return zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "extensions must start with a dot"), "extension", ext)
		}
	}
	return nil
}
