package common

import (
	"errors"
	"strings"
)

// ErrModulePaused is returned by state-changing entry points of a paused
// contract kind.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a contract kind ("bond", "treasury", ...) is
// currently halted by the operator.
type PauseView interface {
	IsPaused(module string) bool
}

// PauseSet is a static PauseView built from configuration.
type PauseSet map[string]struct{}

// NewPauseSet normalises the configured module names.
func NewPauseSet(modules []string) PauseSet {
	set := make(PauseSet, len(modules))
	for _, module := range modules {
		if trimmed := strings.ToLower(strings.TrimSpace(module)); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

func (s PauseSet) IsPaused(module string) bool {
	_, ok := s[strings.ToLower(module)]
	return ok
}

// Guard fails with ErrModulePaused when the module is halted. A nil view
// never blocks.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
