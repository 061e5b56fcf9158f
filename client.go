// Package salamoonder is a client for the salamoonder captcha and anti-bot
// solving service. Tasks are created with CreateTask and collected with
// GetTaskResult, or run to completion with Solve.
package salamoonder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Client talks to the solving service. It holds no per-task state and is
// safe for concurrent use when its transport is.
type Client struct {
	apiKey  string
	doer    Doer
	limiter *ratelimit.Limiter
	cfg     ClientConfig
}

// NewClient creates a client for apiKey.
func NewClient(apiKey string, cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		slog.Error("attempted to create client without API key")
		return nil, &ConfigurationError{Field: "api key", Err: ErrMissingAPIKey}
	}

	cfg.defaults()
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, &ConfigurationError{Field: "BaseURL", Err: err}
	}
	if cfg.Timeout < 0 {
		return nil, &ConfigurationError{Field: "Timeout", Err: fmt.Errorf("negative duration %s", cfg.Timeout)}
	}

	doer := cfg.Transport
	if doer == nil {
		opts := []stealth.ClientOption{
			stealth.WithHeaderOrder(apiHeaderOrder),
			stealth.WithProfile(cfg.Profile.TLSProfile),
			stealth.WithTimeout(timeoutSeconds(cfg.Timeout)),
		}
		if cfg.Proxy != "" {
			opts = append(opts, stealth.WithProxy(cfg.Proxy))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, &ConfigurationError{Field: "transport", Err: fmt.Errorf("stealth client: %w", err)}
		}
		doer = bc
	}

	slog.Debug("client initialized",
		slog.String("base_url", cfg.BaseURL),
		slog.String("user_agent", cfg.Profile.UserAgent),
		slog.Bool("proxy", cfg.Proxy != ""))

	c := &Client{apiKey: apiKey, doer: doer, cfg: cfg}
	if cfg.RateLimit != nil {
		c.limiter = ratelimit.NewLimiter(*cfg.RateLimit)
	}
	return c, nil
}

// timeoutSeconds rounds d up to whole seconds for the transport.
func timeoutSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// CreateTask submits a typed task and returns its id.
func (c *Client) CreateTask(ctx context.Context, task Task) (string, error) {
	if task == nil {
		return "", &RequestError{Op: EndpointCreateTask, Reason: ReasonInvalidTask, Message: "nil task"}
	}
	return c.CreateTaskParams(ctx, task.Type(), task.params())
}

// CreateTaskParams submits a task described by a parameter mapping. Parameters
// are checked against the table for taskType before anything is sent.
func (c *Client) CreateTaskParams(ctx context.Context, taskType TaskType, params Params) (string, error) {
	task, err := buildTask(taskType, params)
	if err != nil {
		return "", &RequestError{Op: EndpointCreateTask, Reason: ReasonInvalidTask, Err: err}
	}

	slog.Info("creating task", slog.String("type", string(taskType)))
	resp, err := c.post(ctx, EndpointCreateTask, map[string]any{"task": task})
	if err != nil {
		return "", err
	}

	if code, msg, ok := classifyError(resp.body); ok {
		slog.Error("task rejected", slog.String("type", string(taskType)), slog.String("code", code), slog.String("message", msg))
		return "", &RequestError{Op: EndpointCreateTask, Reason: ReasonRejected, StatusCode: resp.status, Code: code, Message: msg}
	}

	id, err := parseCreateTask(resp.body)
	if err != nil {
		return "", &RequestError{Op: EndpointCreateTask, Reason: ReasonMalformed, StatusCode: resp.status, Err: err}
	}

	slog.Info("task created", slog.String("type", string(taskType)), slog.String("task_id", id))
	return id, nil
}

// GetTaskResult fetches the current state of a task once. A pending or failed
// task is reported through the returned TaskResult, not as an error.
func (c *Client) GetTaskResult(ctx context.Context, taskID string) (*TaskResult, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &RequestError{Op: EndpointGetTaskResult, Reason: ReasonInvalidTask, Message: "empty task id"}
	}

	resp, err := c.post(ctx, EndpointGetTaskResult, map[string]any{"taskId": taskID})
	if err != nil {
		var re *RequestError
		if errors.As(err, &re) && re.Reason == ReasonStatus &&
			(re.StatusCode == http.StatusNotFound || looksNotFound(re.Code, re.Message)) {
			return nil, &NotFoundError{TaskID: taskID, Message: re.Message}
		}
		return nil, err
	}

	// A body with a status describes the task, even a failed one.
	if code, msg, failed := classifyError(resp.body); failed && !hasStatus(resp.body) {
		if looksNotFound(code, msg) {
			return nil, &NotFoundError{TaskID: taskID, Message: msg}
		}
		return nil, &RequestError{Op: EndpointGetTaskResult, Reason: ReasonRejected, StatusCode: resp.status, Code: code, Message: msg}
	}

	res, err := parseTaskResult(taskID, resp.body)
	if err != nil {
		return nil, &RequestError{Op: EndpointGetTaskResult, Reason: ReasonMalformed, StatusCode: resp.status, Err: err}
	}

	switch res.Status {
	case StatusPending:
		slog.Debug("task pending", slog.String("task_id", taskID), slog.String("status", res.RawStatus))
	case StatusReady:
		slog.Info("task ready", slog.String("task_id", taskID))
	case StatusFailed:
		slog.Warn("task failed", slog.String("task_id", taskID), slog.String("status", res.RawStatus), slog.String("message", res.Message))
	}
	return res, nil
}
