// Package sth is a client for the historical query API of a FIWARE
// STH-Comet server.
package sth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lumitemp/pkg/logger"
	"lumitemp/pkg/model"
)

const (
	HeaderService     = "Fiware-Service"
	HeaderServicePath = "Fiware-ServicePath"
	HeaderCorrelator  = "Fiware-Correlator"

	DefaultLastN   = 10
	DefaultTimeout = 5 * time.Second

	maxBodySize = 10 << 20
)

// Fetcher retrieves the most recent samples of one entity attribute.
type Fetcher interface {
	Fetch(ctx context.Context, entity model.Entity) (model.Samples, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, entity model.Entity) (model.Samples, error)

func (f FetcherFunc) Fetch(ctx context.Context, entity model.Entity) (model.Samples, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, entity)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL     string
	Service     string
	ServicePath string
	LastN       int
	Timeout     time.Duration

	// Location converts every recvTime; nil keeps UTC.
	Location *time.Location
}

// Client queries /STH/v1/contextEntities for the last N samples of an
// attribute.
type Client struct {
	baseURL     *url.URL
	service     string
	servicePath string
	lastN       int
	timeout     time.Duration
	location    *time.Location
	httpClient  *http.Client
	log         *logrus.Entry
}

var _ Fetcher = (*Client)(nil)

func NewClient(cfg ClientConfig, httpClient *http.Client, log *logrus.Entry) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("sth base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid sth base url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid sth base url %q: scheme must be http or https", base)
	}
	lastN := cfg.LastN
	if lastN <= 0 {
		lastN = DefaultLastN
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logger.NewDefault("sth")
	}
	return &Client{
		baseURL:     u,
		service:     cfg.Service,
		servicePath: cfg.ServicePath,
		lastN:       lastN,
		timeout:     timeout,
		location:    cfg.Location,
		httpClient:  httpClient,
		log:         log,
	}, nil
}

// URL returns the query URL for an entity attribute.
func (c *Client) URL(entity model.Entity) string {
	u := c.baseURL.JoinPath(
		"STH", "v1", "contextEntities",
		"type", url.PathEscape(entity.Type),
		"id", url.PathEscape(entity.ID),
		"attributes", url.PathEscape(entity.Attribute),
	)
	q := u.Query()
	q.Set("lastN", strconv.Itoa(c.lastN))
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch issues one bounded GET and parses the response. The returned error
// wraps *StatusError, *KeyError, ErrMalformed or the transport error.
func (c *Client) Fetch(ctx context.Context, entity model.Entity) (model.Samples, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.URL(entity)
	correlator := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.service != "" {
		req.Header.Set(HeaderService, c.service)
	}
	if c.servicePath != "" {
		req.Header.Set(HeaderServicePath, c.servicePath)
	}
	req.Header.Set(HeaderCorrelator, correlator)

	log := c.log.WithFields(logrus.Fields{
		"entity":     entity.String(),
		"correlator": correlator,
	})
	log.Debug("sth query")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sth request %s failed: %w", correlator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("sth request %s: %w", correlator, &StatusError{URL: target, Code: resp.StatusCode})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("sth request %s: read body: %w", correlator, err)
	}
	samples, err := Parse(body, c.location)
	if err != nil {
		return nil, fmt.Errorf("sth request %s: %w", correlator, err)
	}
	log.WithField("samples", len(samples)).Debug("sth query done")
	return samples, nil
}
