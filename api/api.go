package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	StatusPagePath = "/PortStatisticsRpm.htm"
	LoginPath      = "/logon.cgi"

	// only present on the real statistics page, never on the login form
	authenticatedMarker = "max_port_num"

	maxBodySize = 4 << 20
)

var (
	transport = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
	}
)

type Options struct {
	// host, host:port or a base URL like http://10.0.0.2
	Address  string
	Username string
	Password string
	// some firmware variants expect an empty cpassword field on login
	SendCPassword bool
	// zero leaves requests bounded only by the context
	Timeout time.Duration
}

// Client talks to the web interface of one switch. The switch remembers
// logins per source IP, most firmware does not even set a cookie.
type Client struct {
	log        *zap.Logger
	httpClient *http.Client
	baseURL    string
	opts       Options
}

func NewClient(log *zap.Logger, opts Options) (*Client, error) {
	baseURL, err := normalizeAddress(opts.Address)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		log: log,
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   opts.Timeout,
		},
		baseURL: baseURL,
		opts:    opts,
	}, nil
}

func normalizeAddress(address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("no switch address given")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("invalid switch address %q: %w", address, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid switch address %q: no host", address)
	}
	return strings.TrimSuffix(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}

// FetchStatusPage returns the raw statistics page. An existing session is
// used if the switch still has one, otherwise it logs in once and fetches
// the page a second time.
func (c *Client) FetchStatusPage(ctx context.Context) (string, error) {
	loggedIn := false
	for {
		body, err := c.getStatusPage(ctx)
		if err != nil {
			return "", err
		}
		if strings.Contains(body, authenticatedMarker) {
			c.log.Debug("got statistics page", zap.Bool("login", loggedIn))
			return body, nil
		}
		if loggedIn {
			return "", fmt.Errorf("%w: statistics page still not available after login", ErrProtocolMismatch)
		}

		c.log.Debug("no session, logging in", zap.String("username", c.opts.Username))
		if err := c.Login(ctx); err != nil {
			return "", err
		}
		loggedIn = true
	}
}

// Login posts the credentials to logon.cgi and decodes the status the switch
// embeds in its answer. The HTTP status code is meaningless, a successful
// login is answered with 401.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.opts.Username)
	form.Set("password", c.opts.Password)
	if c.opts.SendCPassword {
		form.Set("cpassword", "")
	}
	form.Set("logon", "Login")

	body, err := c.request(ctx, http.MethodPost, LoginPath, form)
	if err != nil {
		return err
	}
	return parseLoginStatus(body)
}

func (c *Client) getStatusPage(ctx context.Context) (string, error) {
	return c.request(ctx, http.MethodGet, StatusPagePath, nil)
}

func (c *Client) request(ctx context.Context, method string, path string, form url.Values) (string, error) {
	var buf io.Reader
	if form != nil {
		buf = strings.NewReader(form.Encode())
	}

	url := c.baseURL + path
	c.log.Debug("send request", zap.String("method", method), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, method, url, buf)
	if err != nil {
		return "", err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: method, URL: url, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return "", &NetworkError{Op: method, URL: url, Err: err}
	}

	c.log.Debug("response", zap.Int("status", res.StatusCode), zap.Int("bytes", len(data)))
	return string(data), nil
}
