package akamai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	stealth "github.com/anatolykoptev/go-stealth"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

var webScriptRe = regexp.MustCompile(`<script type="text/javascript".*?src="((/[0-9A-Za-z_-]+)+)">`)

// WebData is what the sensor solver needs from a protected page.
type WebData struct {
	BaseURL   string
	ScriptURL string
	Script    string
	Abck      string
	Bmsz      string
}

// Task builds the AkamaiWebSensorSolver task for one sensor round. data is
// empty on the first round and the previous solution's Data afterwards.
func (d *WebData) Task(websiteURL, userAgent string, count int, data string) salamoonder.AkamaiWebSensorTask {
	return salamoonder.AkamaiWebSensorTask{
		URL:       websiteURL,
		Abck:      d.Abck,
		Bmsz:      d.Bmsz,
		Script:    d.Script,
		SensorURL: d.ScriptURL,
		UserAgent: userAgent,
		Count:     count,
		Data:      data,
	}
}

// SensorResult holds the cookies returned by a sensor post.
type SensorResult struct {
	Abck string
	Bmsz string
}

// Web runs the Akamai Web (sensor_data) flow.
type Web struct {
	browser Browser

	// Jitter pauses between the page and script fetches.
	Jitter bool
}

// NewWeb returns a Web flow over b.
func NewWeb(b Browser) *Web {
	return &Web{browser: b}
}

// FetchAndExtract loads websiteURL, locates the sensor script, fetches it and
// returns the script together with the _abck and bm_sz cookies.
func (w *Web) FetchAndExtract(ctx context.Context, websiteURL, userAgent string) (*WebData, error) {
	base, err := origin(websiteURL)
	if err != nil {
		return nil, err
	}
	slog.Info("akamai: fetching page", slog.String("url", websiteURL))

	nav := navigationHeaders(userAgent, acceptDocument)
	page, err := fetch(ctx, w.browser, "page", websiteURL, nav)
	if err != nil {
		return nil, err
	}

	m := webScriptRe.FindStringSubmatch(string(page))
	if m == nil {
		slog.Warn("akamai: script tag not found", slog.String("url", websiteURL))
		return nil, ErrScriptNotFound
	}
	ref, err := base.Parse(m[1])
	if err != nil {
		return nil, fmt.Errorf("akamai: script path %q: %w", m[1], err)
	}
	scriptURL := ref.String()
	slog.Debug("akamai: script located", slog.String("script_url", scriptURL))

	abck := w.browser.GetCookieValue(websiteURL, "_abck")
	if abck == "" {
		return nil, cookieMissing("_abck")
	}

	if w.Jitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}

	script, err := fetch(ctx, w.browser, "script", scriptURL, scriptHeaders(nav, websiteURL, base.String()))
	if err != nil {
		return nil, err
	}

	bmsz := w.browser.GetCookieValue(websiteURL, "bm_sz")
	if bmsz == "" {
		return nil, cookieMissing("bm_sz")
	}

	slog.Info("akamai: extracted web data",
		slog.String("script_url", scriptURL),
		slog.Int("script_bytes", len(script)))

	return &WebData{
		BaseURL:   base.String(),
		ScriptURL: scriptURL,
		Script:    string(script),
		Abck:      abck,
		Bmsz:      bmsz,
	}, nil
}

// PostSensor posts one solved sensor payload to scriptURL. The site must
// answer 201 and set a fresh _abck cookie.
func (w *Web) PostSensor(ctx context.Context, scriptURL, sensorData, userAgent, websiteURL string) (*SensorResult, error) {
	base, err := origin(websiteURL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"sensor_data": sensorData})
	if err != nil {
		return nil, fmt.Errorf("akamai: encode sensor: %w", err)
	}

	slog.Info("akamai: posting sensor", slog.String("url", scriptURL), slog.Int("bytes", len(body)))
	respBody, headers, status, err := w.browser.DoWithHeaderOrderCtx(ctx, http.MethodPost, scriptURL,
		postHeaders(userAgent, base.String(), websiteURL, ""), bytes.NewReader(body), postOrder)
	if err != nil {
		return nil, fmt.Errorf("akamai: sensor post: %w", err)
	}
	if status != http.StatusCreated {
		slog.Error("akamai: sensor rejected", slog.Int("status", status), slog.String("body", truncateBytes(respBody, 200)))
		return nil, &StatusError{Step: "sensor", URL: scriptURL, StatusCode: status, Want: http.StatusCreated, Body: truncateBytes(respBody, 200)}
	}

	abck := cookieFromHeaders(headers, "_abck")
	if abck == "" {
		slog.Warn("akamai: sensor response set no _abck")
		return nil, cookieMissing("_abck")
	}
	bmsz := cookieFromHeaders(headers, "bm_sz")
	if bmsz == "" {
		bmsz = w.browser.GetCookieValue(websiteURL, "bm_sz")
	}

	slog.Info("akamai: sensor accepted")
	return &SensorResult{Abck: abck, Bmsz: bmsz}, nil
}

// fetch issues a GET and requires HTTP 200.
func fetch(ctx context.Context, b Browser, step, target string, headers map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, status, err := b.DoWithHeaderOrderCtx(ctx, http.MethodGet, target, headers, nil, navigationOrder)
	if err != nil {
		return nil, fmt.Errorf("akamai: %s %s: %w", step, target, err)
	}
	if status != http.StatusOK {
		slog.Error("akamai: unexpected status", slog.String("step", step), slog.Int("status", status))
		return nil, &StatusError{Step: step, URL: target, StatusCode: status, Want: http.StatusOK, Body: truncateBytes(body, 200)}
	}
	return body, nil
}
