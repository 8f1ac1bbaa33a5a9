package domain

import "encoding/json"

// Locator identifies one resolved package instance.
// The zero Locator is the top-level locator: both its name and its reference are absent.
type Locator struct {
	Name      InternedString
	Reference InternedString
}

// TopLevelLocator is the locator of the project root.
var TopLevelLocator = Locator{}

// NewLocator creates a locator for the given package name and reference.
func NewLocator(name, reference string) Locator {
	return Locator{
		Name:      NewInternedString(name),
		Reference: NewInternedString(reference),
	}
}

// IsTopLevel reports whether l is the top-level locator.
func (l Locator) IsTopLevel() bool {
	return l.Name.IsZero()
}

// String returns the "name@reference" form used in diagnostics.
func (l Locator) String() string {
	if l.IsTopLevel() {
		return "<top-level>"
	}
	return l.Name.String() + "@" + l.Reference.String()
}

// MarshalJSON encodes the locator as {"name": ..., "reference": ...} with nulls for the top level.
func (l Locator) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.data())
}

// UnmarshalJSON decodes the {"name": ..., "reference": ...} form.
func (l *Locator) UnmarshalJSON(b []byte) error {
	var data LocatorData
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	loc, err := data.Locator()
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

func (l Locator) data() LocatorData {
	if l.IsTopLevel() {
		return LocatorData{}
	}
	name, reference := l.Name.String(), l.Reference.String()
	return LocatorData{Name: &name, Reference: &reference}
}
