package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://weft.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Render errors (W001-W009)

	"W001": {
		Category: CategoryRender,
		Message:  "Slot declarations changed between renders",
		Detail:   "State and effect slots are matched by call order. A component must declare the same slots in the same order every time it runs, so slots cannot be declared inside conditions or loops.",
		DocURL:   docBase + "W001",
	},
	"W002": {
		Category: CategoryRender,
		Message:  "Component panicked",
		Detail:   "A component function panicked while rendering. The committed tree was left unchanged.",
		DocURL:   docBase + "W002",
	},
	"W003": {
		Category: CategoryRender,
		Message:  "Render loop",
		Detail:   "Components kept requesting renders while rendering. A state setter is probably called unconditionally during render.",
		DocURL:   docBase + "W003",
	},
	"W004": {
		Category: CategoryRender,
		Message:  "Missing mount container",
		Detail:   "Render was called with a nil container.",
		DocURL:   docBase + "W004",
	},

	// Host errors (W010-W019)

	"W010": {
		Category: CategoryHost,
		Message:  "Host rejected an operation",
		Detail:   "The host adapter returned an error during commit. The commit was aborted and the previous tree is still current.",
		DocURL:   docBase + "W010",
	},

	// Effect errors (W020-W029)

	"W020": {
		Category: CategoryEffect,
		Message:  "Effect panicked",
		Detail:   "An effect callback or its cleanup panicked. Other effects of the same commit still ran.",
		DocURL:   docBase + "W020",
	},

	// Protocol errors (W030-W049)

	"W030": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "A frame could not be decoded. The peer may speak a different protocol version.",
		DocURL:   docBase + "W030",
	},
	"W031": {
		Category: CategoryProtocol,
		Message:  "Unknown node",
		Detail:   "An event or patch referenced a node ID the stream does not know. The client is probably out of sync and should reload.",
		DocURL:   docBase + "W031",
	},
	"W032": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "The WebSocket connection could not be established or was closed unexpectedly.",
		DocURL:   docBase + "W032",
	},

	// Config errors (W050-W059)

	"W050": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "weft.json or weft.toml could not be parsed.",
		DocURL:   docBase + "W050",
	},
	"W051": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong format.",
		DocURL:   docBase + "W051",
	},

	// Export errors (W060-W069)

	"W060": {
		Category: CategoryExport,
		Message:  "Snapshot export failed",
		Detail:   "The rendered page could not be written to its destination.",
		DocURL:   docBase + "W060",
	},
	"W061": {
		Category: CategoryExport,
		Message:  "Invalid snapshot name",
		Detail:   "Snapshot names are relative slash-separated paths that stay inside the store.",
		DocURL:   docBase + "W061",
	},

	// CLI errors (W070-W079)

	"W070": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
		Detail:   "The requested demo app does not exist. Run `weft render --list` to see the available demos.",
		DocURL:   docBase + "W070",
	},
	"W071": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "W071",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
