package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/session"
)

// RouteGuard keeps unauthenticated browsers out of the profile pages and
// authenticated ones off the login page. It keys off token-cookie presence
// only, never the full session. Redirect targets are resolved against the
// request and must stay same-origin; anything else falls through with no
// redirect.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(session.TokenCookie)
		hasToken := err == nil

		switch {
		case strings.HasPrefix(r.URL.Path, "/profile") && !hasToken:
			if target, ok := sameOriginTarget(r, "/login"); ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		case strings.HasPrefix(r.URL.Path, "/login") && hasToken:
			if target, ok := sameOriginTarget(r, "/"); ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// sameOriginTarget resolves path against the request's origin and accepts the
// result only if scheme and host are unchanged.
func sameOriginTarget(r *http.Request, path string) (string, bool) {
	base := &url.URL{Scheme: "http", Host: r.Host}
	if r.TLS != nil {
		base.Scheme = "https"
	}
	target, err := base.Parse(path)
	if err != nil {
		return "", false
	}
	if target.Scheme != base.Scheme || target.Host != base.Host {
		return "", false
	}
	return target.String(), true
}
