package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-salamoonder/akamai"
	"github.com/anatolykoptev/go-salamoonder/datadome"
)

// siteBrowser serves a single fake SBSD-protected site.
type siteBrowser struct {
	jar   map[string]string
	posts []string
}

func (s *siteBrowser) DoWithHeaderOrderCtx(_ context.Context, method, url string, _ map[string]string, body io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	switch method + " " + url {
	case "GET https://shop.test/":
		return []byte(`<script src="/.well-known/sbsd/xyz?t=1"></script>`), nil, 200, nil
	case "GET https://shop.test/.well-known/sbsd/xyz?t=1":
		s.jar["bm_so"] = "challenge"
		return []byte("sbsd-js"), nil, 200, nil
	case "POST https://shop.test/.well-known/sbsd/xyz":
		b, _ := io.ReadAll(body)
		s.posts = append(s.posts, string(b))
		s.jar["bm_so"] = "validated"
		return nil, nil, 200, nil
	}
	return nil, nil, 0, errors.New("no route")
}

func (s *siteBrowser) GetCookieValue(_, name string) string { return s.jar[name] }

func TestAkamaiSBSDCommand(t *testing.T) {
	api, _ := setup(t)
	payload := base64.StdEncoding.EncodeToString([]byte(`{"sbsd":"ok"}`))
	api.results = []string{`{"status":"ready","solution":{"payload":"` + payload + `","user-agent":"UA Chrome/140"}}`}

	site := &siteBrowser{jar: map[string]string{}}
	prev := newBrowser
	newBrowser = func(akamai.Options) (akamai.Browser, error) { return site, nil }
	t.Cleanup(func() { newBrowser = prev })

	out, err := run(t, "", "--api-key", "k", "akamai", "sbsd", "https://shop.test/", "--no-jitter", "--poll-interval", "1ms")
	require.NoError(t, err)
	assert.Equal(t, "bm_so=validated\n", out)

	assert.Equal(t, "AkamaiSBSDSolver", api.lastTask["type"])
	assert.Equal(t, "challenge", api.lastTask["cookie"])
	require.Len(t, site.posts, 1)
	assert.JSONEq(t, `{"body":"{\"sbsd\":\"ok\"}"}`, site.posts[0])
}

func TestDatadomeCommands(t *testing.T) {
	setup(t)
	page := `<script>var dd={'cid':'C1','hsh':'H1','t':'fe','s':1,'e':'E1','b':7}</script>`
	path := filepath.Join(t.TempDir(), "blocked.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

	out, err := run(t, "", "datadome", "slider", path, "--cookie", "dd1", "--referer", "https://x.test/")
	require.NoError(t, err)
	want, err := datadome.ParseSliderURL(page, "dd1", "https://x.test/")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	out, err = run(t, page, "datadome", "interstitial", "-", "--cookie", "dd1", "--referer", "https://x.test/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://geo.captcha-delivery.com/interstitial/?initialCid=C1&hash=H1&cid=dd1"))

	blocked := strings.Replace(page, "'fe'", "'bv'", 1)
	_, err = run(t, blocked, "datadome", "slider", "-", "--cookie", "dd1", "--referer", "https://x.test/")
	assert.ErrorIs(t, err, datadome.ErrBlocked)
}
