package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func (n *Notifier) pushover(ctx context.Context, cfg Config, text string) error {
	form := url.Values{
		"token":   {cfg.PushoverToken},
		"user":    {cfg.PushoverUser},
		"message": {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.PushoverURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pushover returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
