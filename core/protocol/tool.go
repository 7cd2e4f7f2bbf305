package protocol

// Tool advertises a capability to the reasoning step. Parameters is a JSON
// Schema describing the call arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// TextParameters is the argument schema shared by tools that accept a single
// text input.
func TextParameters(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"input"},
	}
}
