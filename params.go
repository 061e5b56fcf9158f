package salamoonder

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Params maps parameter names (as documented per task type) to values.
type Params map[string]any

func (p Params) setIf(key, value string) {
	if value != "" {
		p[key] = value
	}
}

// Kind is the value type a task parameter accepts.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	}
	return "string"
}

// ParamSpec describes one parameter of a task type.
type ParamSpec struct {
	Name     string
	Wire     string // field name in the request body when it differs from Name
	Kind     Kind
	Required bool
	// AllowEmpty permits "" for a required string, e.g. the first Akamai round's data.
	AllowEmpty bool
	// Nullable optional parameters are always sent, as null when omitted.
	Nullable bool
}

func (s ParamSpec) wireName() string {
	if s.Wire != "" {
		return s.Wire
	}
	return s.Name
}

func req(name string) ParamSpec { return ParamSpec{Name: name, Required: true} }
func opt(name string) ParamSpec { return ParamSpec{Name: name} }
func reqInt(name string) ParamSpec { return ParamSpec{Name: name, Kind: KindInt, Required: true} }

// taskSchemas is the per-type parameter table.
var taskSchemas = map[TaskType][]ParamSpec{
	KasadaCaptchaSolver: {
		{Name: "pjs_url", Wire: "pjs", Required: true},
		{Name: "cd_only", Wire: "cdOnly", Kind: KindBool, Nullable: true},
	},
	TwitchCheckIntegrity: {
		req("token"),
	},
	TwitchPublicIntegrity: {
		req("access_token"),
		opt("proxy"),
		opt("device_id"),
		opt("client_id"),
	},
	TwitchRegisterAccount: {
		req("email"),
	},
	IncapsulaReese84Solver: {
		req("website"),
		{Name: "submit_payload", Kind: KindBool, Required: true},
		opt("user_agent"),
	},
	IncapsulaUTMVCSolver: {
		req("website"),
		opt("user_agent"),
	},
	AkamaiWebSensorSolver: {
		req("url"),
		req("abck"),
		req("bmsz"),
		req("script"),
		req("sensor_url"),
		opt("user_agent"),
		reqInt("count"),
		{Name: "data", Required: true, AllowEmpty: true},
	},
	AkamaiSBSDSolver: {
		req("url"),
		req("cookie"),
		req("sbsd_url"),
		req("script"),
		opt("user_agent"),
	},
	DataDomeInterstitialSolver: {
		req("captcha_url"),
		opt("user_agent"),
		req("country_code"),
	},
	DataDomeSliderSolver: {
		req("captcha_url"),
		opt("user_agent"),
		req("country_code"),
	},
}

// ParamSpecs returns the parameter table for taskType.
func ParamSpecs(taskType TaskType) ([]ParamSpec, bool) {
	specs, ok := taskSchemas[taskType]
	if !ok {
		return nil, false
	}
	return append([]ParamSpec(nil), specs...), true
}

// lookupSpec finds a spec by documented name or wire name.
func lookupSpec(specs []ParamSpec, key string) (ParamSpec, bool) {
	for _, s := range specs {
		if s.Name == key || s.wireName() == key {
			return s, true
		}
	}
	return ParamSpec{}, false
}

// buildTask validates params against the table for taskType and returns the
// "task" object sent to the service. Values are forwarded unmodified.
func buildTask(taskType TaskType, params Params) (map[string]any, error) {
	specs, ok := taskSchemas[taskType]
	if !ok {
		return nil, fmt.Errorf("unsupported task type %q", taskType)
	}

	task := map[string]any{"type": string(taskType)}
	seen := make(map[string]bool, len(params))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		spec, ok := lookupSpec(specs, k)
		if !ok {
			return nil, fmt.Errorf("%s: unknown parameter %q", taskType, k)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%s: parameter %q given twice", taskType, spec.Name)
		}
		seen[spec.Name] = true

		v := params[k]
		if v == nil && spec.Nullable {
			task[spec.wireName()] = nil
			continue
		}
		if err := checkKind(spec, v); err != nil {
			return nil, fmt.Errorf("%s: %w", taskType, err)
		}
		task[spec.wireName()] = v
	}

	for _, spec := range specs {
		if spec.Required && !seen[spec.Name] {
			return nil, fmt.Errorf("%s: missing required parameter %q", taskType, spec.Name)
		}
		if spec.Nullable && !seen[spec.Name] {
			task[spec.wireName()] = nil
		}
	}
	return task, nil
}

func checkKind(spec ParamSpec, v any) error {
	switch spec.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("parameter %q must be a string, got %T", spec.Name, v)
		}
		if spec.Required && !spec.AllowEmpty && strings.TrimSpace(s) == "" {
			return fmt.Errorf("parameter %q must not be empty", spec.Name)
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("parameter %q must be a bool, got %T", spec.Name, v)
		}
	case KindInt:
		if !isInteger(v) {
			return fmt.Errorf("parameter %q must be an integer, got %T", spec.Name, v)
		}
	}
	return nil
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n) == math.Trunc(float64(n))
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

// ParseParam converts a textual value to the kind the named parameter expects.
func ParseParam(taskType TaskType, name, raw string) (any, error) {
	specs, ok := taskSchemas[taskType]
	if !ok {
		return nil, fmt.Errorf("unsupported task type %q", taskType)
	}
	spec, ok := lookupSpec(specs, name)
	if !ok {
		return nil, fmt.Errorf("%s: unknown parameter %q", taskType, name)
	}
	switch spec.Kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", taskType, name, err)
		}
		return b, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", taskType, name, err)
		}
		return n, nil
	}
	return raw, nil
}
