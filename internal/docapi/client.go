// Package docapi is a client for a remote layout-preserving document text
// service. Documents are submitted, polled until processed, then retrieved.
package docapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxPollInterval = 15 * time.Second

// ErrJobFailed is returned when the service reports the job as failed.
var ErrJobFailed = errors.New("docapi job failed")

// Config for the document API client.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration // per HTTP request
	PollInterval time.Duration // first poll delay, doubled up to 15s
	MaxWait      time.Duration // bound on submit-to-retrieve
	RateEvery    time.Duration // minimum spacing of requests
	RateBurst    int
	Mode         string // processing mode sent on submit, default "form"
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 3 * time.Minute
	}
	if cfg.RateEvery <= 0 {
		cfg.RateEvery = time.Second
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	if cfg.Mode == "" {
		cfg.Mode = "form"
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RateEvery), cfg.RateBurst),
		logger:  logger,
	}
}

// ExtractFile reads path and runs it through the service.
func (c *Client) ExtractFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read file: %w", err)
	}
	return c.Extract(ctx, data)
}

// Extract submits data, polls until the job is processed and returns its text.
func (c *Client) Extract(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MaxWait)
	defer cancel()

	jobID, err := c.submit(ctx, data)
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("docapi.submit.ok", "job_id", jobID, "bytes", len(data))

	if err := c.waitProcessed(ctx, jobID); err != nil {
		return Result{JobID: jobID}, err
	}

	res, err := c.retrieve(ctx, jobID)
	if err != nil {
		return Result{JobID: jobID}, err
	}
	res.Duration = time.Since(start)
	c.logger.Info("docapi.retrieve.ok",
		"job_id", jobID,
		"chars", len(res.Text),
		"pages", res.Pages,
		"tables", len(res.Tables),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (c *Client) submit(ctx context.Context, data []byte) (string, error) {
	q := url.Values{"mode": {c.cfg.Mode}, "output_mode": {"layout_preserving"}}
	raw, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/whisper?"+q.Encode(), bytes.NewReader(data), "application/octet-stream")
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if err := validate("submit.json", raw); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	var out submitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return out.JobID, nil
}

// waitProcessed polls the job with exponential backoff until it is processed,
// failed, or ctx expires.
func (c *Client) waitProcessed(ctx context.Context, jobID string) error {
	delay := c.cfg.PollInterval
	for attempt := 1; ; attempt++ {
		st, err := c.status(ctx, jobID)
		if err != nil {
			return err
		}
		switch st.Status {
		case StatusProcessed:
			return nil
		case StatusErrored:
			return fmt.Errorf("%w: %s", ErrJobFailed, st.Message)
		}

		c.logger.Debug("docapi.poll.retry", "job_id", jobID, "attempt", attempt, "status", st.Status, "delay", delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		case <-t.C:
		}
		delay *= 2
		if delay > maxPollInterval {
			delay = maxPollInterval
		}
	}
}

func (c *Client) status(ctx context.Context, jobID string) (statusResponse, error) {
	raw, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/whisper-status?"+url.Values{"whisper_hash": {jobID}}.Encode(), nil, "")
	if err != nil {
		return statusResponse{}, fmt.Errorf("status: %w", err)
	}
	if err := validate("status.json", raw); err != nil {
		return statusResponse{}, fmt.Errorf("status: %w", err)
	}
	var out statusResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return statusResponse{}, fmt.Errorf("decode status response: %w", err)
	}
	return out, nil
}

func (c *Client) retrieve(ctx context.Context, jobID string) (Result, error) {
	raw, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/whisper-retrieve?"+url.Values{"whisper_hash": {jobID}}.Encode(), nil, "")
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}
	if err := validate("retrieve.json", raw); err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}
	var out retrieveResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("decode retrieve response: %w", err)
	}
	return Result{
		JobID:      jobID,
		Text:       out.ResultText,
		Pages:      out.Pages,
		Confidence: out.Confidence,
		Tables:     out.Tables,
	}, nil
}
