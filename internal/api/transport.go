package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/manageday-dev/manageday/internal/session"
)

// authTransport is the request phase of the pipeline: it reads the current
// credential from the store on every call and attaches the Authorization
// header when one exists. Unauthenticated calls proceed untouched; the
// backend enforces authorization, the client does not pre-empt it.
type authTransport struct {
	base  http.RoundTripper
	store *session.Store
	log   zerolog.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if cred, _, err := t.store.Read(); err == nil && cred != nil {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", cred.Header())
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("api request failed")
		return nil, err
	}

	t.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")
	return resp, nil
}
