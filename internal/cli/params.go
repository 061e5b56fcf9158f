package cli

import (
	"fmt"
	"os"
	"strings"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

// parseTaskType matches s against the supported types, ignoring case.
func parseTaskType(s string) (salamoonder.TaskType, error) {
	for _, t := range salamoonder.TaskTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown task type %q (see \"salamoonder types\")", s)
}

// parseParams turns key=value arguments into typed task parameters.
// A value of the form @path is read from the file at path.
func parseParams(taskType salamoonder.TaskType, args []string) (salamoonder.Params, error) {
	params := make(salamoonder.Params, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q: want key=value", arg)
		}
		if path, isFile := strings.CutPrefix(v, "@"); isFile {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", k, err)
			}
			v = string(b)
		}
		val, err := salamoonder.ParseParam(taskType, k, v)
		if err != nil {
			return nil, err
		}
		params[k] = val
	}
	return params, nil
}

func taskFromArgs(args []string) (salamoonder.TaskType, salamoonder.Params, error) {
	taskType, err := parseTaskType(args[0])
	if err != nil {
		return "", nil, err
	}
	params, err := parseParams(taskType, args[1:])
	if err != nil {
		return "", nil, err
	}
	return taskType, params, nil
}
