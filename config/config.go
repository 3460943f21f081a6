// Package config reads the engine's environment-variable configuration
// once at startup.
package config

import (
	"os"
	"strconv"
)

// Defaults applied when an environment variable is absent or invalid.
const (
	DefaultFPS = 30
	DefaultTPS = 10
)

// Config carries all tunables the engine reads from the environment.
type Config struct {
	FPS int // render loop frame cap (MATRIX_FPS)
	TPS int // main loop tick cap (MATRIX_TPS)

	Debug        bool   // debug logging to file (MATRIX_DEBUG)
	DebugLogPath string // log file override (MATRIX_DEBUG_LOG)
	DebugOverlay bool   // fps/tick readout in the header (MATRIX_DEBUG_OVERLAY)

	Mouse             bool // SGR mouse tracking (MATRIX_MOUSE, default on)
	SigintPassthrough bool // leave SIGINT untrapped (MATRIX_SIGINT_PASSTHROUGH)

	// Forced viewport for headless and test environments. Zero = detect.
	Rows int // MATRIX_ROWS
	Cols int // MATRIX_COLS
}

// Load reads the environment into a Config.
func Load() Config {
	return Config{
		FPS:               envInt("MATRIX_FPS", DefaultFPS, 1, 240),
		TPS:               envInt("MATRIX_TPS", DefaultTPS, 1, 120),
		Debug:             envBool("MATRIX_DEBUG", false),
		DebugLogPath:      os.Getenv("MATRIX_DEBUG_LOG"),
		DebugOverlay:      envBool("MATRIX_DEBUG_OVERLAY", false),
		Mouse:             envBool("MATRIX_MOUSE", true),
		SigintPassthrough: envBool("MATRIX_SIGINT_PASSTHROUGH", false),
		Rows:              envInt("MATRIX_ROWS", 0, 1, 1000),
		Cols:              envInt("MATRIX_COLS", 0, 1, 1000),
	}
}

func envInt(name string, def, min, max int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}

func envBool(name string, def bool) bool {
	switch os.Getenv(name) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
