package akamai

import (
	"fmt"
	"regexp"
	"strings"
)

var chromeVersionRe = regexp.MustCompile(`Chrome/(\d+)`)

// secCHUA builds the sec-ch-ua header matching the Chrome major version in
// userAgent, falling back to 122.
func secCHUA(userAgent string) string {
	version := "122"
	if m := chromeVersionRe.FindStringSubmatch(userAgent); m != nil {
		version = m[1]
	}
	return fmt.Sprintf(`"Chromium";v="%s", "Google Chrome";v="%s", "Not?A_Brand";v="99"`, version, version)
}

const (
	acceptDocument = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	acceptSBSDDoc  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// navigationHeaders are sent with the top-level page load.
func navigationHeaders(userAgent, accept string) map[string]string {
	return map[string]string{
		"sec-ch-ua":                 secCHUA(userAgent),
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-platform":        `"Windows"`,
		"upgrade-insecure-requests": "1",
		"user-agent":                userAgent,
		"accept":                    accept,
		"sec-fetch-site":            "none",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-user":            "?1",
		"sec-fetch-dest":            "document",
		"accept-language":           "en-US,en;q=0.9",
		"priority":                  "u=0, i",
	}
}

var navigationOrder = []string{
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"upgrade-insecure-requests",
	"user-agent",
	"accept",
	"sec-fetch-site",
	"sec-fetch-mode",
	"sec-fetch-user",
	"sec-fetch-dest",
	"referer",
	"origin",
	"accept-language",
	"priority",
}

// scriptHeaders turns navigation headers into a same-origin no-cors script fetch.
func scriptHeaders(nav map[string]string, referer, origin string) map[string]string {
	h := make(map[string]string, len(nav))
	for k, v := range nav {
		h[k] = v
	}
	delete(h, "upgrade-insecure-requests")
	delete(h, "sec-fetch-user")
	delete(h, "priority")
	h["referer"] = referer
	h["origin"] = origin
	h["accept"] = "*/*"
	h["sec-fetch-site"] = "same-origin"
	h["sec-fetch-dest"] = "script"
	h["sec-fetch-mode"] = "no-cors"
	return h
}

// postHeaders are sent with sensor and SBSD posts. priority is omitted when empty.
func postHeaders(userAgent, origin, referer, priority string) map[string]string {
	h := map[string]string{
		"sec-ch-ua":          secCHUA(userAgent),
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"Windows"`,
		"user-agent":         userAgent,
		"content-type":       "application/json",
		"accept":             "*/*",
		"origin":             origin,
		"referer":            referer,
		"sec-fetch-site":     "same-origin",
		"sec-fetch-mode":     "cors",
		"sec-fetch-dest":     "empty",
		"accept-language":    "en-US,en;q=0.9",
	}
	if priority != "" {
		h["priority"] = priority
	}
	return h
}

var postOrder = []string{
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"user-agent",
	"content-type",
	"accept",
	"origin",
	"sec-fetch-site",
	"sec-fetch-mode",
	"sec-fetch-dest",
	"referer",
	"accept-language",
	"priority",
}

// cookieFromHeaders returns the value of cookie name from a set-cookie
// response header. Multiple cookies may be folded into one header value.
func cookieFromHeaders(headers map[string]string, name string) string {
	raw := headers["set-cookie"]
	if raw == "" {
		return ""
	}
	prefix := name + "="
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ';' }) {
		for _, part := range strings.Split(line, ", ") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, prefix) {
				if val := strings.TrimPrefix(part, prefix); val != "" {
					return val
				}
			}
		}
	}
	return ""
}
