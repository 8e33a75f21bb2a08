package layouts

import (
	_ "embed"
)

//go:embed defaults.toml
var defaultLibraryTOML []byte

// DefaultLibrary returns the built-in cooler models. The embedded file is
// validated by tests, so a parse failure here is a build defect.
func DefaultLibrary() *Library {
	lib, err := ParseLibrary(defaultLibraryTOML)
	if err != nil {
		panic("layouts: embedded library invalid: " + err.Error())
	}
	return lib
}
