package akamai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	stealth "github.com/anatolykoptev/go-stealth"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
)

var sbsdScriptRe = regexp.MustCompile(`(?i)<script[^>]+src=["']([^"']*/\.well-known/sbsd/[^"']+)["']`)

// sbsdCookies are the cookie names an SBSD flow may leave behind, in the
// order the challenge cookie is picked.
var sbsdCookies = []string{"bm_so", "sbsd_o", "bm_s", "bm_ss", "bm_sc", "bm_sz", "bm_sv", "ak_bmsc", "_abck"}

// SBSDData is what the SBSD solver needs from a protected page.
type SBSDData struct {
	BaseURL     string
	ScriptURL   string
	Script      string
	CookieName  string
	CookieValue string
}

// Task builds the AkamaiSBSDSolver task for this page.
func (d *SBSDData) Task(websiteURL, userAgent string) salamoonder.AkamaiSBSDTask {
	return salamoonder.AkamaiSBSDTask{
		URL:       websiteURL,
		Cookie:    d.CookieValue,
		SBSDURL:   d.ScriptURL,
		Script:    d.Script,
		UserAgent: userAgent,
	}
}

// SBSD runs the Akamai SBSD flow.
type SBSD struct {
	browser Browser

	// Jitter pauses between the page and script fetches.
	Jitter bool
}

// NewSBSD returns an SBSD flow over b.
func NewSBSD(b Browser) *SBSD {
	return &SBSD{browser: b}
}

// FetchAndExtract loads websiteURL, fetches the /.well-known/sbsd/ script and
// returns it with the bm_so cookie, or sbsd_o when bm_so is absent.
func (s *SBSD) FetchAndExtract(ctx context.Context, websiteURL, userAgent string) (*SBSDData, error) {
	base, err := origin(websiteURL)
	if err != nil {
		return nil, err
	}
	slog.Info("akamai: fetching sbsd page", slog.String("url", websiteURL))

	nav := navigationHeaders(userAgent, acceptSBSDDoc)
	page, err := fetch(ctx, s.browser, "page", websiteURL, nav)
	if err != nil {
		return nil, err
	}

	m := sbsdScriptRe.FindStringSubmatch(string(page))
	if m == nil {
		slog.Warn("akamai: sbsd script not found", slog.String("url", websiteURL))
		return nil, ErrScriptNotFound
	}
	ref, err := base.Parse(m[1])
	if err != nil {
		return nil, fmt.Errorf("akamai: sbsd path %q: %w", m[1], err)
	}
	scriptURL := ref.String()

	if s.Jitter {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return nil, err
		}
	}

	script, err := fetch(ctx, s.browser, "sbsd script", scriptURL, scriptHeaders(nav, websiteURL, base.String()))
	if err != nil {
		return nil, err
	}

	data := &SBSDData{BaseURL: base.String(), ScriptURL: scriptURL, Script: string(script)}
	for _, name := range sbsdCookies[:2] {
		if v := s.browser.GetCookieValue(websiteURL, name); v != "" {
			data.CookieName, data.CookieValue = name, v
			break
		}
	}
	if data.CookieName == "" {
		return nil, cookieMissing(sbsdCookies[:2]...)
	}

	slog.Info("akamai: extracted sbsd data",
		slog.String("script_url", scriptURL),
		slog.String("cookie", data.CookieName),
		slog.Int("script_bytes", len(script)))
	return data, nil
}

// Post decodes the base64 solver payload and posts it to postURL with the
// query string stripped. It returns the Akamai cookies present afterwards.
func (s *SBSD) Post(ctx context.Context, payloadB64, postURL, userAgent, websiteURL string) (map[string]string, error) {
	base, err := origin(websiteURL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		slog.Error("akamai: sbsd payload decode failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	target, err := stripQuery(postURL)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"body": string(decoded)})
	if err != nil {
		return nil, fmt.Errorf("akamai: encode sbsd body: %w", err)
	}

	slog.Info("akamai: posting sbsd", slog.String("url", target), slog.Int("bytes", len(decoded)))
	respBody, _, status, err := s.browser.DoWithHeaderOrderCtx(ctx, http.MethodPost, target,
		postHeaders(userAgent, base.String(), websiteURL, "u=1, i"), bytes.NewReader(body), postOrder)
	if err != nil {
		return nil, fmt.Errorf("akamai: sbsd post: %w", err)
	}
	if status != http.StatusOK {
		slog.Error("akamai: sbsd rejected", slog.Int("status", status), slog.String("body", truncateBytes(respBody, 200)))
		return nil, &StatusError{Step: "sbsd", URL: target, StatusCode: status, Want: http.StatusOK, Body: truncateBytes(respBody, 200)}
	}

	cookies := make(map[string]string)
	for _, name := range sbsdCookies {
		if v := s.browser.GetCookieValue(websiteURL, name); v != "" {
			cookies[name] = v
		}
	}
	if len(cookies) == 0 {
		slog.Warn("akamai: no cookies after sbsd post")
		return nil, cookieMissing(sbsdCookies...)
	}

	slog.Info("akamai: sbsd accepted", slog.Int("cookies", len(cookies)))
	return cookies, nil
}

func stripQuery(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("akamai: parse %q: %w", rawURL, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
