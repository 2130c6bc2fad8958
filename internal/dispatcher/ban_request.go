package dispatcher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"modguard/internal/logging"
)

const apiBase = "https://discord.com/api/v10"

// RESTClient issues mitigation calls straight over fasthttp, bypassing the
// gateway session's serialized REST path. Threshold mitigations race the
// attacker, so latency here matters more than convenience.
type RESTClient struct {
	pool    *HTTPPool
	limiter *RateLimitMonitor
	token   string
}

func NewRESTClient(pool *HTTPPool, limiter *RateLimitMonitor, token string) *RESTClient {
	return &RESTClient{pool: pool, limiter: limiter, token: token}
}

// Ban issues a guild ban without message pruning.
func (c *RESTClient) Ban(guildID, userID, reason string) error {
	url := fmt.Sprintf("%s/guilds/%s/bans/%s", apiBase, guildID, userID)
	body, _ := json.Marshal(map[string]any{"delete_message_seconds": 0})
	return c.do("PUT", url, body, reason, "ban", guildID)
}

// Kick removes the member from the guild.
func (c *RESTClient) Kick(guildID, userID, reason string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s", apiBase, guildID, userID)
	return c.do("DELETE", url, nil, reason, "kick", guildID)
}

// StripRoles clears every role from the member, removing whatever
// capability let them act.
func (c *RESTClient) StripRoles(guildID, userID, reason string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s", apiBase, guildID, userID)
	body, _ := json.Marshal(map[string]any{"roles": []string{}})
	return c.do("PATCH", url, body, reason, "member_edit", guildID)
}

// Timeout disables communication for the member until the given duration
// elapses.
func (c *RESTClient) Timeout(guildID, userID string, duration time.Duration, reason string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s", apiBase, guildID, userID)
	until := time.Now().Add(duration).UTC().Format(time.RFC3339)
	body, _ := json.Marshal(map[string]any{"communication_disabled_until": until})
	return c.do("PATCH", url, body, reason, "member_edit", guildID)
}

func (c *RESTClient) do(method, url string, body []byte, reason, route, guildID string) error {
	if !c.limiter.CanExecute(route, guildID) {
		return fmt.Errorf("rate limited on %s for guild %s", route, guildID)
	}

	start := time.Now()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("X-Audit-Log-Reason", reason)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.SetBody(body)
	}

	client := c.pool.GetClient()
	if err := client.DoTimeout(req, resp, 2*time.Second); err != nil {
		return fmt.Errorf("%s %s: %w", method, route, err)
	}

	c.limiter.UpdateFromResponse(resp, route, guildID)

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("%s %s: status %d", method, route, status)
	}

	logging.Debug("Mitigation call %s %s completed in %d µs (status %d)",
		method, route, time.Since(start).Microseconds(), status)
	return nil
}
