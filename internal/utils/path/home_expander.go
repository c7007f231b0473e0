// Package pathutils resolves user supplied filesystem paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// HomeExpander replaces a leading "~" with the user's home directory.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	resolveOnce   sync.Once
	homeDirectory string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom home directory lookup.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand returns candidatePath with a "~" or "~/" prefix resolved. Other paths are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.resolveOnce.Do(func() {
		homeDirectory, lookupError := expander.provider()
		if lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	return expander.homeDirectory
}
