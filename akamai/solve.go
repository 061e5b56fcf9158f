package akamai

import (
	"context"
	"fmt"
	"log/slog"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

// Solver runs a task to a terminal state. *salamoonder.Client implements it.
type Solver interface {
	Solve(ctx context.Context, task salamoonder.Task) (*salamoonder.TaskResult, error)
}

// DefaultRounds is the number of sensor posts most sites need before _abck validates.
const DefaultRounds = 3

// Solve runs the complete Web flow: extract, then for each round solve a
// sensor and post it. Each round feeds the previous solution's data and the
// freshest cookies into the next task.
func (w *Web) Solve(ctx context.Context, solver Solver, websiteURL, userAgent string, rounds int) (*SensorResult, error) {
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	data, err := w.FetchAndExtract(ctx, websiteURL, userAgent)
	if err != nil {
		return nil, err
	}

	cur := &SensorResult{Abck: data.Abck, Bmsz: data.Bmsz}
	respData := ""
	for i := range rounds {
		task := data.Task(data.BaseURL, userAgent, i, respData)
		task.Abck, task.Bmsz = cur.Abck, cur.Bmsz

		res, err := solver.Solve(ctx, task)
		if err != nil {
			return nil, fmt.Errorf("akamai: round %d: %w", i+1, err)
		}
		var sol salamoonder.AkamaiSensorSolution
		if err := res.Decode(&sol); err != nil {
			return nil, fmt.Errorf("akamai: round %d: %w", i+1, err)
		}
		respData = sol.Data

		next, err := w.PostSensor(ctx, data.ScriptURL, sol.Payload, userAgent, websiteURL)
		if err != nil {
			return nil, fmt.Errorf("akamai: round %d: %w", i+1, err)
		}
		cur.Abck = next.Abck
		if next.Bmsz != "" {
			cur.Bmsz = next.Bmsz
		}
		slog.Info("akamai: sensor round done", slog.Int("round", i+1), slog.Int("rounds", rounds))
	}
	return cur, nil
}

// Solve runs the complete SBSD flow and returns the cookies set by the post.
func (s *SBSD) Solve(ctx context.Context, solver Solver, websiteURL, userAgent string) (map[string]string, error) {
	data, err := s.FetchAndExtract(ctx, websiteURL, userAgent)
	if err != nil {
		return nil, err
	}

	res, err := solver.Solve(ctx, data.Task(data.BaseURL, userAgent))
	if err != nil {
		return nil, fmt.Errorf("akamai: sbsd: %w", err)
	}
	var sol salamoonder.SBSDSolution
	if err := res.Decode(&sol); err != nil {
		return nil, fmt.Errorf("akamai: sbsd: %w", err)
	}

	ua := sol.UserAgent
	if ua == "" {
		ua = userAgent
	}
	return s.Post(ctx, sol.Payload, data.ScriptURL, ua, websiteURL)
}
