// Package errors provides coded, actionable diagnostics for the weft CLI.
//
// Each error has a code (e.g. "W001") that maps to a short message, a
// longer explanation and a documentation link. Engine, protocol, config
// and export failures are translated into coded errors by Classify, and
// Format renders them for a terminal:
//
//	ERROR W050: Invalid configuration file
//
//	  weft.toml:4:9
//
//	       3 │ [render]
//	  →    4 │ budget = "fast"
//	         │         ^
//	       5 │
//
//	  Hint: durations are strings like "5ms"
//
// Colors are used only when stderr is a terminal and NO_COLOR is unset.
package errors
