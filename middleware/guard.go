package middleware

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/MrEthical07/hrauth"
	"github.com/MrEthical07/hrauth/access"
	"github.com/MrEthical07/hrauth/permission"
	"github.com/MrEthical07/hrauth/session"
)

// NextParam is the query parameter carrying the resume path on a redirect
// to the login page.
const NextParam = "next"

// RetryAfterSeconds is sent with 503 while the engine is initializing.
const RetryAfterSeconds = 1

// Guard returns middleware that evaluates every request against the
// engine's route table. Paths no route covers pass through, except "/"
// which always redirects to the caller's role home.
func Guard(engine *hrauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			sess := engine.Session()
			d, guarded := engine.DecidePathFor(sess, r.URL.Path)
			if !guarded {
				next.ServeHTTP(w, r.WithContext(hrauth.WithSession(r.Context(), sess)))
				return
			}
			serve(sess, d, next, w, r)
		})
	}
}

// Require returns middleware that admits callers holding at least one of
// keys. The super-role is always admitted. An empty keys list admits only
// the super-role.
func Require(engine *hrauth.Engine, keys ...string) func(http.Handler) http.Handler {
	required := permission.NewSet(keys...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			sess := engine.Session()
			serve(sess, engine.DecideFor(sess, required, r.URL.Path), next, w, r)
		})
	}
}

// serve acts on d. An admitted request carries the same snapshot d was
// evaluated against.
func serve(sess session.Session, d access.Decision, next http.Handler, w http.ResponseWriter, r *http.Request) {
	switch d.Verdict {
	case access.Allow:
		next.ServeHTTP(w, r.WithContext(hrauth.WithSession(r.Context(), sess)))
	case access.Loading:
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
		http.Error(w, "session initializing", http.StatusServiceUnavailable)
	case access.RedirectLogin:
		http.Redirect(w, r, loginURL(d.Target, r.URL.RequestURI()), http.StatusFound)
	default:
		http.Redirect(w, r, d.Target, http.StatusFound)
	}
}

func loginURL(loginPath, resume string) string {
	if resume == "" {
		return loginPath
	}
	return loginPath + "?" + url.Values{NextParam: {resume}}.Encode()
}
