package blum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/blum-farm-cli/internal/adapters/proxy"
	"github.com/bnema/blum-farm-cli/internal/domain"
	"github.com/bnema/blum-farm-cli/internal/ports"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultGameURL       = "https://game-domain.blum.codes/api/v1"
	DefaultUserURL       = "https://user-domain.blum.codes/api/v1"
	DefaultProxyCheckURL = "https://httpbin.org/ip"

	defaultRequestTimeout = 30 * time.Second
	proxyCheckTimeout     = 5 * time.Second
)

type Config struct {
	GameURL       string
	UserURL       string
	ProxyCheckURL string

	Timeout time.Duration
	// FailurePause is waited out after every failed request before the error is returned.
	FailurePause time.Duration
	// MaxRPS caps outgoing requests per second. Zero disables pacing.
	MaxRPS float64

	Proxy     string
	UserAgent string

	Logger *zap.Logger
	Sleep  func(ctx context.Context, d time.Duration) error
}

type Client struct {
	cfg       Config
	http      *resty.Client
	connector *proxy.Connector
	limiter   *rate.Limiter
	logger    *zap.Logger
	bearer    string
	closed    bool
}

var _ ports.GameAPI = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	for name, raw := range map[string]string{"game": cfg.GameURL, "user": cfg.UserURL} {
		if err := validateBaseURL(raw); err != nil {
			return nil, fmt.Errorf("%s api url: %w", name, err)
		}
	}
	if cfg.ProxyCheckURL == "" {
		cfg.ProxyCheckURL = DefaultProxyCheckURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.Sleep == nil {
		cfg.Sleep = ports.SystemClock{}.Sleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var descriptor proxy.Descriptor
	if strings.TrimSpace(cfg.Proxy) != "" {
		parsed, err := proxy.Parse(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		descriptor = parsed
	}
	connector, err := proxy.NewConnector(descriptor)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.MaxRPS > 0 {
		limit = rate.Limit(cfg.MaxRPS)
	}

	httpClient := resty.New().
		SetTransport(connector.Transport()).
		SetTimeout(cfg.Timeout).
		SetLogger(logger.Sugar()).
		SetHeaders(miniAppHeaders(cfg.UserAgent))

	return &Client{
		cfg:       cfg,
		http:      httpClient,
		connector: connector,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}, nil
}

func miniAppHeaders(userAgent string) map[string]string {
	headers := map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Content-Type":    "application/json",
		"Origin":          "https://telegram.blum.codes",
		"Referer":         "https://telegram.blum.codes/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-site",
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return headers
}

func (c *Client) SetBearer(token string) {
	c.bearer = token
}

func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.http.GetClient().CloseIdleConnections()
	c.connector.Close()
	c.closed = true
	return nil
}

func (c *Client) Closed() bool {
	return c.closed
}

type call struct {
	op     string
	method string
	url    string
	body   any
	auth   bool
	// timeout overrides the configured request timeout when set.
	timeout time.Duration
}

// send runs one request and returns the raw body of a 2xx response. Transport failures
// come back as *domain.RequestError and non-2xx answers as *domain.APIError. send does
// not pause; callers pass errors they return through fail.
func (c *Client) send(ctx context.Context, rq call) ([]byte, error) {
	if c.closed {
		return nil, &domain.RequestError{Op: rq.op, Err: errors.New("client is closed")}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.RequestError{Op: rq.op, Err: err}
	}

	reqCtx, cancel := c.requestContext(ctx, rq.timeout)
	defer cancel()

	req := c.http.R().SetContext(reqCtx)
	if rq.auth && c.bearer != "" {
		req.SetAuthToken(c.bearer)
	}
	if rq.body != nil {
		req.SetBody(rq.body)
	}

	resp, err := req.Execute(rq.method, rq.url)
	if err != nil {
		return nil, &domain.RequestError{Op: rq.op, Err: err}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, &domain.APIError{
			Op:         rq.op,
			StatusCode: resp.StatusCode(),
			Message:    messageFromBody(body),
		}
	}

	return body, nil
}

// sendJSON runs a request and decodes its 2xx body into out.
func (c *Client) sendJSON(ctx context.Context, rq call, out any) error {
	body, err := c.send(ctx, rq)
	if err != nil {
		return c.fail(ctx, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(ctx, &domain.RequestError{Op: rq.op, Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

// fail pauses for FailurePause before handing a request failure back to the caller.
func (c *Client) fail(ctx context.Context, err error) error {
	c.logger.Debug("request failed", zap.Error(err))
	if c.cfg.FailurePause > 0 {
		_ = c.cfg.Sleep(ctx, c.cfg.FailurePause)
	}
	return err
}

func (c *Client) requestContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) gameURL(path string) string {
	return strings.TrimRight(c.cfg.GameURL, "/") + path
}

func (c *Client) userURL(path string) string {
	return strings.TrimRight(c.cfg.UserURL, "/") + path
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("base url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("base url must use http or https")
	}
	if parsed.Host == "" {
		return errors.New("base url host is required")
	}
	return nil
}
