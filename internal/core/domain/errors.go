package domain

import "go.trai.ch/zerr"

var (
	// ErrStateReadFailed is returned when the serialized state cannot be read.
	ErrStateReadFailed = zerr.New("failed to read serialized state")

	// ErrStateParseFailed is returned when the serialized state is not a valid document.
	ErrStateParseFailed = zerr.New("failed to parse serialized state")

	// ErrStateMalformed is returned when the serialized state is structurally invalid.
	ErrStateMalformed = zerr.New("malformed serialized state")

	// ErrUnsupportedStateFormat is returned when the state file extension is not recognized.
	ErrUnsupportedStateFormat = zerr.New("unsupported serialized state format")

	// ErrInvalidIgnorePattern is returned when the ignore pattern does not compile.
	ErrInvalidIgnorePattern = zerr.New("invalid ignore pattern")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when neither a config file nor a state file can be found.
	ErrConfigNotFound = zerr.New("could not find .pnprc.yml or .pnp.data.json")

	// ErrInvalidSetting is returned when a setting has an unusable value.
	ErrInvalidSetting = zerr.New("invalid setting")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrInvalidVirtualBase is returned when a virtual path base is not a virtual folder.
	ErrInvalidVirtualBase = zerr.New(`virtual folders must be named "$$virtual" or "__virtual__"`)

	// ErrInvalidVirtualComponent is returned when a virtual component does not end with a hex hash.
	ErrInvalidVirtualComponent = zerr.New("virtual components must be ended by an hexadecimal hash")

	// ErrNativeResolutionFailed is returned when the node_modules lookup cannot find a request.
	ErrNativeResolutionFailed = zerr.New("cannot find module")

	// ErrNoRequests is returned when a batch resolution is started without requests.
	ErrNoRequests = zerr.New("no requests specified")

	// ErrPackageNotFound is returned when a queried package is absent from the registry.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrAmbiguousPackage is returned when a package name matches several references.
	ErrAmbiguousPackage = zerr.New("package name is ambiguous")

	// ErrModuleNotFound is the umbrella category of resolution errors that mean
	// "this module cannot be found". See ResolutionError.Is.
	ErrModuleNotFound = zerr.New("module not found")
)
