package utils

import (
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog/log"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}

// DebugRoundTripper dumps every request and response to the log. Only
// wired in when the provider debugHttp option is set.
func DebugRoundTripper() http.RoundTripper {
	return DebugRoundTripperWithUnderlying(http.DefaultTransport)
}

func DebugRoundTripperWithUnderlying(u http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		d, _ := httputil.DumpRequest(r, true)
		log.Debug().Msg(string(d))
		res, err := u.RoundTrip(r)
		if err == nil {
			d, _ = httputil.DumpResponse(res, true)
			log.Debug().Msg(string(d))
		}
		return res, err
	})
}
