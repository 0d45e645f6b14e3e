package session

import (
	"net/http"
	"net/url"
)

// Jar is the durable per-browser storage the session store writes through.
// The HTTP implementation reads request cookies and queues Set-Cookie
// headers; tests use a map-backed fake.
type Jar interface {
	Get(name string) (string, bool)
	Set(cookie *http.Cookie)
	Delete(name string)
}

type httpJar struct {
	r *http.Request
	w http.ResponseWriter
}

// HTTPJar wraps a request/response pair as a Jar.
func HTTPJar(w http.ResponseWriter, r *http.Request) Jar {
	return &httpJar{r: r, w: w}
}

func (j *httpJar) Get(name string) (string, bool) {
	c, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	// Values are stored percent-encoded since JSON is not cookie-safe.
	decoded, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return decoded, true
}

func (j *httpJar) Set(cookie *http.Cookie) {
	cookie.Value = url.QueryEscape(cookie.Value)
	http.SetCookie(j.w, cookie)
}

func (j *httpJar) Delete(name string) {
	http.SetCookie(j.w, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
}
