package akamai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

var _ Solver = (*salamoonder.Client)(nil)

// scriptedSolver returns canned solutions in order and records the tasks it saw.
type scriptedSolver struct {
	solutions []string
	tasks     []salamoonder.Task
	err       error
}

func (s *scriptedSolver) Solve(_ context.Context, task salamoonder.Task) (*salamoonder.TaskResult, error) {
	s.tasks = append(s.tasks, task)
	if s.err != nil {
		return nil, s.err
	}
	sol := s.solutions[0]
	s.solutions = s.solutions[1:]
	return &salamoonder.TaskResult{TaskID: "t", Status: salamoonder.StatusReady, RawStatus: "ready", Solution: json.RawMessage(sol)}, nil
}

func TestWebSolve(t *testing.T) {
	b := newFakeBrowser()
	b.routes["GET https://a.test/shop"] = route{status: 200, body: webPage, cookies: map[string]string{"_abck": "abck-0"}}
	b.routes["GET https://a.test/Xy-z/abc_12/def"] = route{status: 200, body: "js", cookies: map[string]string{"bm_sz": "bmsz-0"}}

	// Each post returns a new _abck; the route is swapped between rounds by the solver.
	posts := 0
	solver := &scriptedSolver{solutions: []string{
		`{"payload":"s1","data":"d1","user-agent":"UA"}`,
		`{"payload":"s2","data":"d2","user-agent":"UA"}`,
	}}
	wrapped := solverFunc(func(ctx context.Context, task salamoonder.Task) (*salamoonder.TaskResult, error) {
		posts++
		b.routes["POST https://a.test/Xy-z/abc_12/def"] = route{
			status:  201,
			headers: map[string]string{"set-cookie": "_abck=abck-" + string(rune('0'+posts)) + "; Path=/"},
		}
		return solver.Solve(ctx, task)
	})

	res, err := NewWeb(b).Solve(context.Background(), wrapped, "https://a.test/shop", testUA, 2)
	require.NoError(t, err)
	assert.Equal(t, &SensorResult{Abck: "abck-2", Bmsz: "bmsz-0"}, res)

	require.Len(t, solver.tasks, 2)
	first := solver.tasks[0].(salamoonder.AkamaiWebSensorTask)
	second := solver.tasks[1].(salamoonder.AkamaiWebSensorTask)
	assert.Equal(t, 0, first.Count)
	assert.Equal(t, "", first.Data)
	assert.Equal(t, "abck-0", first.Abck)
	assert.Equal(t, "https://a.test", first.URL)
	assert.Equal(t, 1, second.Count)
	assert.Equal(t, "d1", second.Data)
	assert.Equal(t, "abck-1", second.Abck)

	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(b.requests[len(b.requests)-1].body), &sent))
	assert.Equal(t, "s2", sent["sensor_data"])
}

func TestWebSolve_SolverError(t *testing.T) {
	b := newFakeBrowser()
	b.routes["GET https://a.test/"] = route{status: 200, body: webPage, cookies: map[string]string{"_abck": "a"}}
	b.routes["GET https://a.test/Xy-z/abc_12/def"] = route{status: 200, body: "js", cookies: map[string]string{"bm_sz": "b"}}

	cause := &salamoonder.ServiceError{TaskID: "t", Status: "failed", Message: "nope"}
	_, err := NewWeb(b).Solve(context.Background(), &scriptedSolver{err: cause}, "https://a.test/", testUA, 0)
	var se *salamoonder.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "round 1")
}

func TestSBSDSolve(t *testing.T) {
	b := newFakeBrowser()
	b.routes["GET https://a.test/"] = route{status: 200, body: sbsdPage}
	b.routes["GET https://a.test/.well-known/sbsd/abc123?v=5"] = route{status: 200, body: "js", cookies: map[string]string{"bm_so": "so"}}
	b.routes["POST https://a.test/.well-known/sbsd/abc123"] = route{status: 200, cookies: map[string]string{"bm_so": "so-2"}}

	payload := base64.StdEncoding.EncodeToString([]byte("solved-body"))
	solver := &scriptedSolver{solutions: []string{`{"payload":"` + payload + `","user-agent":"Solver UA Chrome/140"}`}}

	cookies, err := NewSBSD(b).Solve(context.Background(), solver, "https://a.test/", testUA)
	require.NoError(t, err)
	assert.Equal(t, "so-2", cookies["bm_so"])

	task := solver.tasks[0].(salamoonder.AkamaiSBSDTask)
	assert.Equal(t, "so", task.Cookie)
	assert.Equal(t, "https://a.test", task.URL)

	post := b.requests[len(b.requests)-1]
	assert.Equal(t, "Solver UA Chrome/140", post.headers["user-agent"])
	assert.Contains(t, post.headers["sec-ch-ua"], `v="140"`)
}

func TestSBSDSolve_BadSolution(t *testing.T) {
	b := newFakeBrowser()
	b.routes["GET https://a.test/"] = route{status: 200, body: sbsdPage}
	b.routes["GET https://a.test/.well-known/sbsd/abc123?v=5"] = route{status: 200, body: "js", cookies: map[string]string{"bm_so": "so"}}

	_, err := NewSBSD(b).Solve(context.Background(), &scriptedSolver{solutions: []string{`"just-a-string"`}}, "https://a.test/", testUA)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCookieMissing))
}

type solverFunc func(ctx context.Context, task salamoonder.Task) (*salamoonder.TaskResult, error)

func (f solverFunc) Solve(ctx context.Context, task salamoonder.Task) (*salamoonder.TaskResult, error) {
	return f(ctx, task)
}
