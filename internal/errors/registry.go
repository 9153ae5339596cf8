package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Live Tree Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryRuntime,
		Message:    "Address not found",
		Detail:     "A patch addressed a node that does not exist in the live tree. The live tree has drifted from the snapshot the patches were computed against.",
		Suggestion: "Apply patches in emission order to a tree congruent with the previous snapshot.",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "Child index out of range",
		Detail:   "A child operation referenced an index beyond the parent's children.",
	},
	"E103": {
		Category: CategoryRuntime,
		Message:  "Operation on wrong node kind",
		Detail:   "A text operation addressed an element, or a child operation addressed a text node.",
	},
	"E104": {
		Category: CategoryRuntime,
		Message:  "Listener not found",
		Detail:   "No listener is installed for the event on the addressed node.",
	},

	// ============================================
	// Protocol Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "The frame header or payload could not be decoded.",
	},
	"E202": {
		Category: CategoryProtocol,
		Message:  "Unknown patch op",
		Detail:   "The patch operation byte is not one of the known operations.",
	},
	"E203": {
		Category: CategoryProtocol,
		Message:  "Depth limit exceeded",
		Detail:   "The encoded tree is nested deeper than the decoder allows.",
	},

	// ============================================
	// Config Errors (E301-E399)
	// ============================================

	"E301": {
		Category:   CategoryConfig,
		Message:    "Cannot read configuration",
		Detail:     "The configuration file could not be read or parsed as JSON.",
		Suggestion: "Check that vtree.json exists and is valid JSON.",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or inconsistent.",
	},

	// ============================================
	// Document Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryDocument,
		Message:  "Cannot parse tree document",
		Detail:   "The tree document is not valid YAML or JSON.",
	},
	"E402": {
		Category:   CategoryDocument,
		Message:    "Invalid node document",
		Detail:     "A node must be a string, a mapping with a text key, or a mapping with a tag key.",
		Suggestion: "Use {tag: div, attrs: {...}, children: [...]} or {text: \"...\"}.",
	},

	// ============================================
	// Storage Errors (E501-E599)
	// ============================================

	"E501": {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
		Detail:   "No snapshot is stored for this session.",
	},
	"E502": {
		Category: CategoryStorage,
		Message:  "Snapshot backend failure",
		Detail:   "The snapshot store returned an error.",
	},

	// ============================================
	// CLI Errors (E601-E699)
	// ============================================

	"E601": {
		Category: CategoryCLI,
		Message:  "Invalid usage",
		Detail:   "The command was invoked with invalid arguments or flags.",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
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
