package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuth admits a connection when it carries the shared token, either as
// the token query parameter or as a bearer Authorization header. An empty
// token admits everyone.
type TokenAuth struct {
	Token string
}

func (m TokenAuth) OnConnect(r *http.Request) error {
	if m.Token == "" {
		return nil
	}
	got := r.URL.Query().Get("token")
	if got == "" {
		got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(m.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
