package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
//
// These levels control WHAT categories of output are shown, not just log severity.
//
//	if logger.ShouldOutput(verbosity, logger.OutputStageTiming) {
//	    pterm.Debug.Printfln("%s took %s", stage, d)
//	}
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + startup, dataset summary, sessions
	VerbosityDebug = 2 // -vv: + controls, stage timing, config details
	VerbosityTrace = 3 // -vvv: + per-message websocket traffic
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
// Mapping:
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2+ (-vv)  -> DebugLevel (+ debug messages)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Command output, inspect tables
	OutputErrors                        // Errors with hints

	// Level 1 (-v) - Informational
	OutputStartup  // Startup banner, dataset summary
	OutputSessions // Session open/close

	// Level 2 (-vv) - Detailed
	OutputControls    // Control values received per interaction
	OutputStageTiming // Per-stage timing
	OutputConfig      // Config values loaded/applied

	// Level 3 (-vvv) - Trace
	OutputPayloads // Render payload sizes per message
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:     VerbosityUser,
	OutputErrors:      VerbosityUser,
	OutputStartup:     VerbosityInfo,
	OutputSessions:    VerbosityInfo,
	OutputControls:    VerbosityDebug,
	OutputStageTiming: VerbosityDebug,
	OutputConfig:      VerbosityDebug,
	OutputPayloads:    VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch {
	case verbosity <= VerbosityUser:
		return "User"
	case verbosity == VerbosityInfo:
		return "Info (-v)"
	case verbosity == VerbosityDebug:
		return "Debug (-vv)"
	default:
		return "Trace (-vvv)"
	}
}
