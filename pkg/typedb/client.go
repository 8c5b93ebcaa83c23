package typedb

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/typeviz/pkg/cache"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/observability"
	"github.com/matzehuels/typeviz/pkg/query"
)

const defaultTimeout = 30 * time.Second

// Client talks to one TypeDB server with a bearer token obtained at sign-in.
// It is safe for concurrent use.
type Client struct {
	address  string
	username string
	token    string

	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	backoff cache.Backoff
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithCache caches read query responses in ch for ttl.
func WithCache(ch cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = ch
		c.ttl = ttl
	}
}

// WithBackoff replaces the retry policy.
func WithBackoff(b cache.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func newClient(address, username string, opts []Option) (*Client, error) {
	if err := errors.ValidateURL(address); err != nil {
		return nil, err
	}
	c := &Client{
		address:  strings.TrimRight(address, "/"),
		username: username,
		http:     &http.Client{Timeout: defaultTimeout},
		cache:    cache.NewNullCache(),
		backoff:  cache.DefaultBackoff,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "user:"+username+":")
	return c, nil
}

// SignIn exchanges username and password for a token and returns a client
// bound to address.
func SignIn(ctx context.Context, address, username, password string, opts ...Option) (*Client, error) {
	c, err := newClient(address, username, opts)
	if err != nil {
		return nil, err
	}

	body := map[string]string{"username": username, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/v1/signin", body)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeNetwork
		}
		return nil, errors.Wrap(code, err, "sign in to %s", c.address)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "sign in to %s: no token in response", c.address)
	}
	c.token = out.Token
	c.logger.Debug("signed in", "address", c.address, "username", username)
	return c, nil
}

// Resume returns a client that reuses a token from an earlier sign-in. The
// token is not checked; an expired token surfaces as UNAUTHORIZED on the
// first call.
func Resume(address, username, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty token")
	}
	c, err := newClient(address, username, opts)
	if err != nil {
		return nil, err
	}
	c.token = token
	return c, nil
}

// Token returns the bearer token, for storing in a session.
func (c *Client) Token() string { return c.token }

// Username returns the user the client signed in as.
func (c *Client) Username() string { return c.username }

// Address returns the server address the client is bound to.
func (c *Client) Address() string { return c.address }

// Databases lists database names in sorted order.
func (c *Client) Databases(ctx context.Context) ([]string, error) {
	data, err := c.do(ctx, http.MethodGet, "/v1/databases", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Databases []struct {
			Name string `json:"name"`
		} `json:"databases"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode database list")
	}
	names := make([]string, len(out.Databases))
	for i, db := range out.Databases {
		names[i] = db.Name
	}
	slices.Sort(names)
	return names, nil
}

// CreateDatabase creates the named database.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	if err := errors.ValidateDatabaseName(name); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, "/v1/databases/"+url.PathEscape(name), nil)
	return err
}

// DeleteDatabase deletes the named database.
func (c *Client) DeleteDatabase(ctx context.Context, name string) error {
	if err := errors.ValidateDatabaseName(name); err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodDelete, "/v1/databases/"+url.PathEscape(name), nil); err != nil {
		return err
	}
	c.bumpGeneration(ctx, name)
	return nil
}

type queryRequest struct {
	Query           string          `json:"query"`
	DatabaseName    string          `json:"databaseName"`
	TransactionType query.QueryType `json:"transactionType"`
}

// Query runs q against database in a transaction of type tx and decodes
// the response. Read responses are served from and stored in the cache.
func (c *Client) Query(ctx context.Context, database, q string, tx query.QueryType) (*query.Response, error) {
	if err := errors.ValidateDatabaseName(database); err != nil {
		return nil, err
	}
	if err := errors.ValidateQuery(q); err != nil {
		return nil, err
	}
	switch tx {
	case query.QueryRead, query.QueryWrite, query.QuerySchema:
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown transaction type %q", tx)
	}

	cacheable := tx == query.QueryRead
	var key string
	if cacheable {
		key = c.keyer.QueryKey(c.address, database+"@"+c.generation(ctx, database), q)
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if resp, err := query.Decode(bytes.NewReader(data)); err == nil {
				c.logger.Debug("query served from cache", "database", database)
				return resp, nil
			}
			_ = c.cache.Delete(ctx, key)
		}
	}

	data, err := c.do(ctx, http.MethodPost, "/v1/query", queryRequest{
		Query:           q,
		DatabaseName:    database,
		TransactionType: tx,
	})
	if err != nil {
		return nil, err
	}
	resp, err := query.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		}
	} else {
		c.bumpGeneration(ctx, database)
	}
	return resp, nil
}

// generation returns the current write generation of database, or "" when
// no write has been seen.
func (c *Client) generation(ctx context.Context, database string) string {
	data, ok, err := c.cache.Get(ctx, c.keyer.GenerationKey(c.address, database))
	if err != nil || !ok {
		return ""
	}
	return string(data)
}

// bumpGeneration retires every cached read of database. The generation
// lives as long as the reads it guards.
func (c *Client) bumpGeneration(ctx context.Context, database string) {
	key := c.keyer.GenerationKey(c.address, database)
	if err := c.cache.Set(ctx, key, []byte(uuid.NewString()), c.ttl); err != nil {
		c.logger.Warn("cache invalidation failed", "database", database, "error", err)
	}
}

// do sends one request with retries and returns the response body of a 2xx
// reply.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode request")
		}
	}

	var out []byte
	err := c.backoff.Retry(ctx, func() error {
		data, err := c.send(ctx, method, path, payload)
		out = data
		return err
	})
	return out, err
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.address+path, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hooks := observability.Client()
	hooks.OnRequest(ctx, method, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s %s", method, path)
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	hooks.OnResponse(ctx, method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s response", path))
	}
	if err := checkStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkStatus(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "status %d: %s", code, msg)
	case code == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "status %d: %s", code, msg)
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "status %d: %s", code, msg)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return cache.Retryable(errors.New(errors.ErrCodeTimeout, "status %d: %s", code, msg))
	case code >= 500:
		return cache.Retryable(errors.New(errors.ErrCodeNetwork, "status %d: %s", code, msg))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "status %d: %s", code, msg)
	}
}
