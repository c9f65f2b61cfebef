package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy configures cross-origin access for the booking pages.
// AllowedOrigins entries are exact origins, "*", or a single-level wildcard
// host such as "https://*.example.com".
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type corsRules struct {
	any       bool
	exact     map[string]struct{}
	suffixes  []string
	methods   map[string]struct{}
	allowMeth string
	allowHdr  string
	maxAge    string
	creds     bool
}

func compileCORS(p CORSPolicy) corsRules {
	c := corsRules{
		exact:   map[string]struct{}{},
		methods: map[string]struct{}{},
		creds:   p.AllowCredentials,
	}
	for _, o := range p.AllowedOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "":
		case o == "*":
			c.any = true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "://*")
			c.suffixes = append(c.suffixes, scheme+"://|"+host)
		default:
			c.exact[o] = struct{}{}
		}
	}
	var methods []string
	for _, m := range p.AllowedMethods {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			c.methods[m] = struct{}{}
			methods = append(methods, m)
		}
	}
	var headers []string
	for _, h := range p.AllowedHeaders {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}
	c.allowMeth = strings.Join(methods, ", ")
	c.allowHdr = strings.Join(headers, ", ")
	if p.MaxAge > 0 {
		c.maxAge = strconv.Itoa(int(p.MaxAge.Seconds()))
	}
	return c
}

func (c corsRules) empty() bool {
	return !c.any && len(c.exact) == 0 && len(c.suffixes) == 0
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin.
func (c corsRules) allowOrigin(origin string) (string, bool) {
	lower := strings.ToLower(origin)
	if _, ok := c.exact[lower]; ok {
		return origin, true
	}
	for _, s := range c.suffixes {
		scheme, host, _ := strings.Cut(s, "|")
		rest, ok := strings.CutPrefix(lower, scheme)
		if ok && strings.HasSuffix(rest, host) && len(rest) > len(host) && !strings.Contains(strings.TrimSuffix(rest, host), ".") {
			return origin, true
		}
	}
	if c.any {
		if c.creds {
			return origin, true
		}
		return "*", true
	}
	return "", false
}

// WithCORS answers preflight requests and decorates responses for allowed origins.
// An empty origin list disables it.
func WithCORS(p CORSPolicy) Middleware {
	rules := compileCORS(p)
	if rules.empty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")

			allow, ok := rules.allowOrigin(origin)
			if origin == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Origin", allow)
			if rules.creds {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			reqMethod := r.Header.Get("Access-Control-Request-Method")
			if r.Method != http.MethodOptions || reqMethod == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := rules.methods[strings.ToUpper(reqMethod)]; !ok && len(rules.methods) > 0 {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if rules.allowMeth != "" {
				h.Set("Access-Control-Allow-Methods", rules.allowMeth)
			}
			if rules.allowHdr != "" {
				h.Set("Access-Control-Allow-Headers", rules.allowHdr)
			}
			if rules.maxAge != "" {
				h.Set("Access-Control-Max-Age", rules.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
