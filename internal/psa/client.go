// Package psa is a small client for the PSA public certificate API.
package psa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public certificate API root.
	DefaultBaseURL = "https://api.psacard.com/publicapi/cert"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// DefaultCallDelay separates consecutive requests.
	DefaultCallDelay = time.Second

	// MaxResponseSize caps JSON and image bodies (10MB).
	MaxResponseSize = 10 * 1024 * 1024

	userAgent = "Mozilla/5.0 (compatible; tcg-inventory-api)"
	referer   = "https://www.psacard.com/"
)

// ErrMissingToken is returned when no bearer token is configured.
var ErrMissingToken = errors.New("no PSA OAuth token found in config or token file")

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Config holds client settings.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	CallDelay time.Duration
}

// Client calls the certificate API. Requests wait on a limiter so consecutive
// calls are at least CallDelay apart.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client. The token must be non-empty.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.CallDelay > 0 {
		limit = rate.Every(cfg.CallDelay)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   strings.TrimSpace(cfg.Token),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("psa"),
	}, nil
}

// LoadToken returns configToken when set, otherwise the trimmed contents of tokenFile.
func LoadToken(configToken, tokenFile string) (string, error) {
	if t := strings.TrimSpace(configToken); t != "" {
		return t, nil
	}
	if tokenFile == "" {
		return "", ErrMissingToken
	}

	data, err := os.ReadFile(tokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrMissingToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	t := strings.TrimSpace(string(data))
	if t == "" {
		return "", ErrMissingToken
	}
	return t, nil
}

// CertDetails is the subset of certificate data the inventory keeps.
type CertDetails struct {
	CertNumber       string `json:"CertNumber"`
	Year             string `json:"Year"`
	Brand            string `json:"Brand"`
	Subject          string `json:"Subject"`
	CardNumber       string `json:"CardNumber"`
	CardGrade        string `json:"CardGrade"`
	GradeDescription string `json:"GradeDescription"`
	LabelType        string `json:"LabelType"`
	TotalPopulation  *int   `json:"TotalPopulation"`
	PopulationHigher *int   `json:"PopulationHigher"`
}

// CertImage is one entry of the image listing.
type CertImage struct {
	IsFrontImage bool   `json:"IsFrontImage"`
	ImageURL     string `json:"ImageURL"`
}

// GetCertDetails fetches GetByCertNumber/{cert}.
func (c *Client) GetCertDetails(ctx context.Context, certNumber string) (*CertDetails, error) {
	var body struct {
		PSACert *CertDetails `json:"PSACert"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/GetByCertNumber/"+url.PathEscape(certNumber), &body); err != nil {
		return nil, err
	}
	if body.PSACert == nil {
		return nil, fmt.Errorf("certificate %s: empty response", certNumber)
	}
	return body.PSACert, nil
}

// GetCertImages fetches GetImagesByCertNumber/{cert}.
func (c *Client) GetCertImages(ctx context.Context, certNumber string) ([]CertImage, error) {
	var images []CertImage
	if err := c.getJSON(ctx, c.baseURL+"/GetImagesByCertNumber/"+url.PathEscape(certNumber), &images); err != nil {
		return nil, err
	}
	return images, nil
}

// DownloadImage fetches an image body. Downloads are not authenticated.
func (c *Client) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response body too large: %d bytes (max %d)", len(body), MaxResponseSize)
	}
	return body, nil
}
