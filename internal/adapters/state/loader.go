// Package state reads serialized dependency trees from disk.
package state

import (
	"encoding/json"
	"errors"
	"path"
	"strings"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.StateLoader = (*Loader)(nil)

// Loader implements ports.StateLoader for JSON and YAML documents.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a new Loader reading through fs.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads the state file at the portable path p. The format is picked from the extension.
func (l *Loader) Load(p string) (*domain.SerializedState, error) {
	data, err := l.fs.ReadFile(p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStateReadFailed, err.Error()), "path", p)
	}

	var state *domain.SerializedState
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".json":
		state, err = decodeJSON(data)
	case ".yml", ".yaml":
		state, err = decodeYAML(data)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedStateFormat, "cannot decode state"), "extension", ext)
	}
	if err != nil {
		return nil, zerr.With(err, "path", p)
	}

	if err := state.Validate(); err != nil {
		return nil, zerr.With(err, "path", p)
	}
	return state, nil
}

func decodeJSON(data []byte) (*domain.SerializedState, error) {
	var state domain.SerializedState
	if err := json.Unmarshal(data, &state); err != nil {
		if errors.Is(err, domain.ErrStateMalformed) {
			return nil, err
		}
		return nil, zerr.Wrap(domain.ErrStateParseFailed, err.Error())
	}
	return &state, nil
}

// decodeYAML goes through JSON so the tuple codecs of the state types apply.
func decodeYAML(data []byte) (*domain.SerializedState, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(domain.ErrStateParseFailed, err.Error())
	}
	if doc == nil {
		return nil, zerr.Wrap(domain.ErrStateParseFailed, "empty document")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrStateParseFailed, err.Error())
	}
	return decodeJSON(raw)
}
