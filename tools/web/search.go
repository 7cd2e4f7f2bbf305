package web

import (
	"context"
	"fmt"
)

// Search is a placeholder for a real search backend. It tells the reasoning
// step which services could be integrated and to fall back to browse_website.
func Search(_ context.Context, query string) (string, error) {
	return fmt.Sprintf("Search results for '%s':\n\n"+
		"This is a placeholder search result. To implement real web search, you would need to integrate with services like:\n"+
		"- Google Custom Search API\n"+
		"- Bing Search API\n"+
		"- DuckDuckGo API\n"+
		"- SerpAPI\n\n"+
		"For now, you can use the browse_website tool with specific URLs.", query), nil
}
