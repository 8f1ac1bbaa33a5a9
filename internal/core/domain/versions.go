package domain

// Versions describes the capabilities of the runtime API so callers can feature-detect them.
type Versions struct {
	Std        int            `json:"std"`
	Extensions map[string]int `json:"extensions"`
}

// APIVersions returns the capability descriptor of this runtime.
func APIVersions() Versions {
	return Versions{
		Std: 3,
		Extensions: map[string]int{
			"resolveVirtual": 1,
			"getAllLocators": 1,
		},
	}
}

// Has reports whether the named extension is available.
func (v Versions) Has(extension string) bool {
	_, ok := v.Extensions[extension]
	return ok
}
