// Package clipboard wraps the system clipboard behind an init-once
// facade. Initialization failure (headless session, missing X display)
// leaves the clipboard unavailable and writes become silent no-ops.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/trilitech/miaou-matrix/logger"
)

var (
	once      sync.Once
	available bool
)

// Init initializes the system clipboard. Safe to call multiple times.
func Init() error {
	var err error
	once.Do(func() {
		if ierr := clipboard.Init(); ierr != nil {
			err = fmt.Errorf("clipboard init: %w", ierr)
			logger.Log("clipboard unavailable: %v", ierr)
			return
		}
		available = true
	})
	if !available && err == nil {
		err = fmt.Errorf("clipboard unavailable")
	}
	return err
}

// Available reports whether Init succeeded.
func Available() bool {
	return available
}

// WriteText places text on the system clipboard. No-op when the
// clipboard is unavailable.
func WriteText(text string) {
	if !available || text == "" {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
}
