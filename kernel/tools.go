package kernel

import (
	"fmt"
	"net/http"

	"github.com/tailored-agentic-units/webagent/tools"
	"github.com/tailored-agentic-units/webagent/tools/notify"
	"github.com/tailored-agentic-units/webagent/tools/web"
)

// BuiltinTools registers send_push_notification, browse_website,
// search_web and extract_links, in that order, and seals the registry. The
// notifier is returned so credentials can be updated at runtime. client may
// be nil.
func BuiltinTools(cfg *Config, client *http.Client) (*tools.Registry, *notify.Notifier, error) {
	notifier := notify.New(cfg.Notify, client)
	browser := web.NewBrowser(cfg.Web, client)

	reg := tools.NewRegistry()
	descriptors := append([]tools.Descriptor{notifier.Descriptor()}, browser.Descriptors()...)
	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return nil, nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}
	reg.Seal()

	return reg, notifier, nil
}
