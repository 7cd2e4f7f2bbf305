// Package autoload registers every built-in reasoning provider. Import it
// for side effects:
//
//	import _ "github.com/tailored-agentic-units/webagent/agent/providers/autoload"
package autoload

import (
	_ "github.com/tailored-agentic-units/webagent/agent/providers/gemini"
	_ "github.com/tailored-agentic-units/webagent/agent/providers/mock"
	_ "github.com/tailored-agentic-units/webagent/agent/providers/ollama"
	_ "github.com/tailored-agentic-units/webagent/agent/providers/openai"
)
