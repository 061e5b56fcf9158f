// Package datadome builds DataDome challenge URLs from a blocked page so they
// can be handed to the DataDome solvers as captcha_url.
package datadome

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

const (
	sliderBase       = "https://geo.captcha-delivery.com/captcha/?"
	interstitialBase = "https://geo.captcha-delivery.com/interstitial/?"
)

var (
	// ErrObjectNotFound means the page has no inline `var dd=` object.
	ErrObjectNotFound = errors.New("datadome: dd object not found")

	// ErrBlocked means DataDome hard-blocked the IP (t=bv); no challenge can be solved.
	ErrBlocked = errors.New("datadome: IP is blocked")
)

// object is the inline `var dd={...}` challenge descriptor.
type object map[string]any

// field renders a value the way it appears in challenge URLs: strings as is,
// numbers as written in the page, missing values as "None".
func (o object) field(key string) string {
	switch v := o[key].(type) {
	case nil:
		return "None"
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(v)
	}
}

func parseObject(html string) (object, error) {
	_, after, ok := strings.Cut(html, "var dd=")
	if !ok {
		slog.Error("datadome: object not found")
		return nil, ErrObjectNotFound
	}
	raw, _, _ := strings.Cut(after, "</script>")
	raw = strings.ReplaceAll(raw, "'", `"`)

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj object
	if err := dec.Decode(&obj); err != nil {
		slog.Error("datadome: failed to parse object", slog.Any("error", err))
		return nil, fmt.Errorf("datadome: parse object: %w", err)
	}
	return obj, nil
}

// query encodes pairs in the given order.
func query(pairs [][2]string) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String()
}

// ParseSliderURL builds the slider captcha URL from a blocked page, the
// current datadome cookie, and the page URL.
func ParseSliderURL(html, ddCookie, referer string) (string, error) {
	obj, err := parseObject(html)
	if err != nil {
		return "", err
	}
	if obj.field("t") == "bv" {
		slog.Error("datadome: IP is blocked (t=bv)")
		return "", ErrBlocked
	}

	u := sliderBase + query([][2]string{
		{"initialCid", obj.field("cid")},
		{"hash", obj.field("hsh")},
		{"cid", ddCookie},
		{"t", obj.field("t")},
		{"referer", referer},
		{"s", obj.field("s")},
		{"e", obj.field("e")},
		{"dm", "cd"},
	})
	slog.Info("datadome: slider url built", slog.String("url", truncate(u, 80)))
	return u, nil
}

// ParseInterstitialURL builds the interstitial (device check) URL from a
// blocked page, the current datadome cookie, and the page URL.
func ParseInterstitialURL(html, ddCookie, referer string) (string, error) {
	obj, err := parseObject(html)
	if err != nil {
		return "", err
	}

	u := interstitialBase + query([][2]string{
		{"initialCid", obj.field("cid")},
		{"hash", obj.field("hsh")},
		{"cid", ddCookie},
		{"referer", referer},
		{"s", obj.field("s")},
		{"e", obj.field("e")},
		{"b", obj.field("b")},
		{"dm", "cd"},
	})
	slog.Info("datadome: interstitial url built", slog.String("url", truncate(u, 80)))
	return u, nil
}

// SliderTask parses the page and returns a ready DataDomeSliderSolver task.
func SliderTask(html, ddCookie, referer, userAgent, countryCode string) (salamoonder.DataDomeSliderTask, error) {
	u, err := ParseSliderURL(html, ddCookie, referer)
	if err != nil {
		return salamoonder.DataDomeSliderTask{}, err
	}
	return salamoonder.DataDomeSliderTask{CaptchaURL: u, UserAgent: userAgent, CountryCode: countryCode}, nil
}

// InterstitialTask parses the page and returns a ready DataDomeInterstitialSolver task.
func InterstitialTask(html, ddCookie, referer, userAgent, countryCode string) (salamoonder.DataDomeInterstitialTask, error) {
	u, err := ParseInterstitialURL(html, ddCookie, referer)
	if err != nil {
		return salamoonder.DataDomeInterstitialTask{}, err
	}
	return salamoonder.DataDomeInterstitialTask{CaptchaURL: u, UserAgent: userAgent, CountryCode: countryCode}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
