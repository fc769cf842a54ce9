// Package peer lets one deployment talk to others over the deployment
// contract: direct sends, fan-out broadcasts and health probes against a
// named set of peer base URLs.
package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/harshapalnati/agno/core"
	"github.com/harshapalnati/agno/deploy"
	"github.com/harshapalnati/agno/logging"
)

// Options configures a Client.
type Options struct {
	// HTTPClient overrides the default client. The default enforces
	// RequestTimeout.
	HTTPClient *http.Client

	// RequestTimeout bounds each peer request when HTTPClient is not set.
	RequestTimeout time.Duration

	// MaxConcurrent caps parallel requests during Broadcast.
	MaxConcurrent int

	// Logger receives request diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// BroadcastResult is one peer's outcome within a broadcast. Exactly one of
// Response or Err is meaningful.
type BroadcastResult struct {
	Response  string
	SessionID string
	Err       error
}

// Client addresses a set of named peer deployments. It is safe for
// concurrent use.
type Client struct {
	mu            sync.RWMutex
	peers         map[string]string // name -> base URL
	httpClient    *http.Client
	maxConcurrent int
	logger        logging.Logger
}

// NewClient constructs an empty peer client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		RequestTimeout: 2 * time.Minute,
		MaxConcurrent:  8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}

	return &Client{
		peers:         make(map[string]string),
		httpClient:    opts.HTTPClient,
		maxConcurrent: opts.MaxConcurrent,
		logger:        logging.OrNoOp(opts.Logger),
	}
}

// AddPeer registers a peer deployment under name. Re-adding a name replaces
// its URL.
func (c *Client) AddPeer(name, baseURL string) error {
	if name == "" {
		return core.NewConfigurationError("peer", "peer name must not be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return core.NewConfigurationError("peer", "invalid base URL %q for peer %q", baseURL, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers[name] = baseURL
	return nil
}

// RemovePeer drops a peer. Removing an unknown name is a no-op.
func (c *Client) RemovePeer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.peers, name)
}

// Peers returns the registered peer names, sorted.
func (c *Client) Peers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.peers))
	for name := range c.peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Send delivers one message to the named peer's chat endpoint. An empty
// sessionID lets the peer start a fresh session; the effective id comes back
// in the response.
func (c *Client) Send(ctx context.Context, peer, sessionID, message string) (*deploy.ChatResponse, error) {
	baseURL, err := c.lookup(peer)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(deploy.ChatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send to peer %q: %w", peer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("peer %q returned status %d: %s", peer, resp.StatusCode, string(body))
	}

	var out deploy.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response from peer %q: %w", peer, err)
	}
	c.logger.Debug("peer.send.ok", "peer", peer, "session_id", out.SessionID)
	return &out, nil
}

// Broadcast delivers the message to every registered peer concurrently and
// collects each outcome. One peer failing never affects the others and the
// call itself never fails; callers inspect per-peer errors in the result.
func (c *Client) Broadcast(ctx context.Context, message string) map[string]BroadcastResult {
	names := c.Peers()
	results := make([]BroadcastResult, len(names))

	p := pool.New().WithMaxGoroutines(c.maxConcurrent)
	for i, name := range names {
		i, name := i, name
		p.Go(func() {
			resp, err := c.Send(ctx, name, "", message)
			if err != nil {
				c.logger.Warn("peer.broadcast.failed", "peer", name, "error", err.Error())
				results[i] = BroadcastResult{Err: err}
				return
			}
			results[i] = BroadcastResult{Response: resp.Response, SessionID: resp.SessionID}
		})
	}
	p.Wait()

	out := make(map[string]BroadcastResult, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out
}

// CheckHealth probes the named peer's health endpoint.
func (c *Client) CheckHealth(ctx context.Context, peer string) error {
	baseURL, err := c.lookup(peer)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check for peer %q: %w", peer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer %q is unhealthy: status %d", peer, resp.StatusCode)
	}
	return nil
}

func (c *Client) lookup(peer string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	baseURL, ok := c.peers[peer]
	if !ok {
		return "", fmt.Errorf("unknown peer %q", peer)
	}
	return baseURL, nil
}
