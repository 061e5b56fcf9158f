package salamoonder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TaskStatus is the client-side view of a task's state on the service.
type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusReady   TaskStatus = "ready"
	StatusFailed  TaskStatus = "failed"
)

// TaskResult is the outcome of a single GetTaskResult call.
type TaskResult struct {
	TaskID string
	Status TaskStatus

	// RawStatus is the status string exactly as the service sent it.
	RawStatus string

	// Solution is the undecoded solution; set only when Status is StatusReady.
	Solution json.RawMessage

	// Message carries the service's diagnostic text for failed tasks.
	Message string
}

// Pending reports whether the task is still being solved.
func (r *TaskResult) Pending() bool { return r.Status == StatusPending }

// Ready reports whether the task finished with a solution.
func (r *TaskResult) Ready() bool { return r.Status == StatusReady }

// Err returns the service-side failure for a failed task, nil otherwise.
func (r *TaskResult) Err() error {
	if r.Status != StatusFailed {
		return nil
	}
	return &ServiceError{TaskID: r.TaskID, Status: r.RawStatus, Message: r.Message}
}

// Token returns the solution when the service sent it as a plain JSON string.
func (r *TaskResult) Token() (string, error) {
	if r.Status != StatusReady {
		return "", fmt.Errorf("task %s is %s, no solution", r.TaskID, r.Status)
	}
	var s string
	if err := json.Unmarshal(r.Solution, &s); err != nil {
		return "", fmt.Errorf("solution of task %s is not a string: %w", r.TaskID, err)
	}
	return s, nil
}

// Decode unmarshals the solution into v.
func (r *TaskResult) Decode(v any) error {
	if r.Status != StatusReady {
		return fmt.Errorf("task %s is %s, no solution", r.TaskID, r.Status)
	}
	if len(r.Solution) == 0 {
		return fmt.Errorf("task %s: empty solution", r.TaskID)
	}
	if err := json.Unmarshal(r.Solution, v); err != nil {
		return fmt.Errorf("decode solution of task %s: %w", r.TaskID, err)
	}
	return nil
}

// parseCreateTask extracts the task id from a createTask response.
func parseCreateTask(body []byte) (string, error) {
	var resp struct {
		TaskID      json.RawMessage `json:"taskId"`
		TaskIDSnake json.RawMessage `json:"task_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse createTask response: %w", err)
	}
	raw := resp.TaskID
	if len(raw) == 0 || string(raw) == "null" {
		raw = resp.TaskIDSnake
	}
	id := rawID(raw)
	if id == "" {
		return "", fmt.Errorf("empty task id in response: %s", truncateBytes(body, 200))
	}
	return id, nil
}

// rawID accepts both string and numeric ids.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// parseTaskResult maps a getTaskResult response onto a TaskResult.
func parseTaskResult(taskID string, body []byte) (*TaskResult, error) {
	var resp struct {
		Status   string          `json:"status"`
		Solution json.RawMessage `json:"solution"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse getTaskResult response: %w", err)
	}

	res := &TaskResult{TaskID: taskID, RawStatus: resp.Status}
	switch strings.ToLower(strings.TrimSpace(resp.Status)) {
	case "pending", "processing", "idle":
		res.Status = StatusPending
	case "ready":
		if len(resp.Solution) == 0 || string(resp.Solution) == "null" {
			return nil, fmt.Errorf("task %s ready but no solution in response", taskID)
		}
		res.Status = StatusReady
		res.Solution = resp.Solution
	case "":
		return nil, fmt.Errorf("missing status in response: %s", truncateBytes(body, 200))
	default:
		res.Status = StatusFailed
		if _, msg, _ := classifyError(body); msg != "" {
			res.Message = msg
		} else {
			res.Message = fmt.Sprintf("unexpected task status: %s", resp.Status)
		}
	}
	return res, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasStatus reports whether body carries a non-empty "status" field.
func hasStatus(body []byte) bool {
	var probe struct {
		Status string `json:"status"`
	}
	return json.Unmarshal(body, &probe) == nil && strings.TrimSpace(probe.Status) != ""
}
