package domain

import (
	"bytes"
	"encoding/json"

	"go.trai.ch/zerr"
)

// SerializedState is the on-disk snapshot of an installed dependency tree.
// Maps are stored as arrays of tuples so that the document survives any
// serialization format that lacks non-string keys.
type SerializedState struct {
	// IgnorePatternData is an ECMAScript regular expression matched against
	// base-relative paths that must be left to native resolution.
	IgnorePatternData *string `json:"ignorePatternData"`

	PackageRegistryData   []PackageStoreData       `json:"packageRegistryData"`
	LocationBlacklistData []string                 `json:"locationBlacklistData"`
	FallbackExclusionList []FallbackExclusionEntry `json:"fallbackExclusionList"`
	FallbackPool          []FallbackPoolEntry      `json:"fallbackPool"`
	DependencyTreeRoots   []LocatorData            `json:"dependencyTreeRoots"`

	EnableTopLevelFallback bool `json:"enableTopLevelFallback"`
}

// Validate checks that the fields hydration cannot do without are present.
func (s *SerializedState) Validate() error {
	if s.PackageRegistryData == nil {
		return zerr.With(zerr.Wrap(ErrStateMalformed, "missing required field"), "field", "packageRegistryData")
	}
	if s.DependencyTreeRoots == nil {
		return zerr.With(zerr.Wrap(ErrStateMalformed, "missing required field"), "field", "dependencyTreeRoots")
	}
	return nil
}

// LocatorData is the serialized {"name", "reference"} form of a locator.
type LocatorData struct {
	Name      *string `json:"name"`
	Reference *string `json:"reference"`
}

// Locator converts the serialized form, rejecting half-null locators.
func (d LocatorData) Locator() (Locator, error) {
	if (d.Name == nil) != (d.Reference == nil) {
		return Locator{}, zerr.Wrap(ErrStateMalformed, "locator name and reference must both be null or both be set")
	}
	if d.Name == nil {
		return TopLevelLocator, nil
	}
	return NewLocator(*d.Name, *d.Reference), nil
}

// PackageStoreData is the [name, [[reference, information], ...]] tuple.
type PackageStoreData struct {
	Name       *string
	References []PackageReferenceData
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PackageStoreData) UnmarshalJSON(b []byte) error {
	parts, err := decodeTuple(b, 2, "packageRegistryData")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(parts[0], &p.Name); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &p.References)
}

// PackageReferenceData is the [reference, information] tuple.
type PackageReferenceData struct {
	Reference   *string
	Information PackageInformationData
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PackageReferenceData) UnmarshalJSON(b []byte) error {
	parts, err := decodeTuple(b, 2, "packageStore")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(parts[0], &p.Reference); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &p.Information)
}

// PackageInformationData is the serialized form of PackageInformation.
type PackageInformationData struct {
	PackageLocation     string            `json:"packageLocation"`
	PackageDependencies []DependencyEntry `json:"packageDependencies"`
	PackagePeers        []string          `json:"packagePeers,omitempty"`
	LinkType            LinkType          `json:"linkType"`
	DiscardFromLookup   bool              `json:"discardFromLookup,omitempty"`
}

// DependencyEntry is the [dependencyName, target] tuple.
type DependencyEntry struct {
	Name   string
	Target DependencyTarget
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *DependencyEntry) UnmarshalJSON(b []byte) error {
	parts, err := decodeTuple(b, 2, "packageDependencies")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(parts[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &e.Target)
}

// FallbackExclusionEntry is the [name, [reference, ...]] tuple.
type FallbackExclusionEntry struct {
	Name       string
	References []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *FallbackExclusionEntry) UnmarshalJSON(b []byte) error {
	parts, err := decodeTuple(b, 2, "fallbackExclusionList")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(parts[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &e.References)
}

// FallbackPoolEntry is the [name, target] tuple.
type FallbackPoolEntry struct {
	Name   string
	Target DependencyTarget
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *FallbackPoolEntry) UnmarshalJSON(b []byte) error {
	parts, err := decodeTuple(b, 2, "fallbackPool")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(parts[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(parts[1], &e.Target)
}

// UnmarshalJSON decodes null, "reference" or ["name", "reference"].
func (t *DependencyTarget) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = NullTarget()
		return nil
	case len(b) > 0 && b[0] == '"':
		var reference string
		if err := json.Unmarshal(b, &reference); err != nil {
			return err
		}
		*t = ReferenceTarget(reference)
		return nil
	default:
		var alias []string
		if err := json.Unmarshal(b, &alias); err != nil {
			return err
		}
		if len(alias) != 2 {
			return zerr.With(zerr.Wrap(ErrStateMalformed, "unexpected tuple length"), "tuple", "dependencyTarget")
		}
		*t = AliasTarget(alias[0], alias[1])
		return nil
	}
}

// MarshalJSON encodes the target in its serialized form.
func (t DependencyTarget) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case targetReference:
		return json.Marshal(t.reference)
	case targetAlias:
		return json.Marshal([2]string{t.name, t.reference})
	default:
		return []byte("null"), nil
	}
}

func decodeTuple(b []byte, size int, tuple string) ([]json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return nil, err
	}
	if len(parts) != size {
		err := zerr.With(zerr.Wrap(ErrStateMalformed, "unexpected tuple length"), "tuple", tuple)
		return nil, zerr.With(err, "length", len(parts))
	}
	return parts, nil
}
