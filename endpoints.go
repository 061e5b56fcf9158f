package salamoonder

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://salamoonder.com/api"

// Endpoint names the remote operations exposed by the service.
type Endpoint string

const (
	EndpointCreateTask    Endpoint = "createTask"
	EndpointGetTaskResult Endpoint = "getTaskResult"
)

// URL returns the full URL for this endpoint under base.
func (e Endpoint) URL(base string) string {
	return strings.TrimRight(base, "/") + "/" + string(e)
}

// validateBaseURL checks that base is an absolute http(s) URL.
func validateBaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", base)
	}
	return nil
}
