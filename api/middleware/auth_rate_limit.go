package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aion-commerce/aion-backend/api/responses"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/logger"
)

// RateLimiterStore is the counter surface backing rate limit policies.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy defines the throttling parameters for a traffic surface.
// A policy with no window or no positive limit disables the middleware.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy with the supplied window and limits.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counterDimension is one throttled axis of a request, already resolved to
// its redis key.
type counterDimension struct {
	scope     string
	key       string
	limit     int
	logFields map[string]any
}

// AuthRateLimit enforces per-IP and per-email counters for auth endpoints.
// Emails never reach redis in the clear; only their sha256 digest is keyed.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			dims, err := resolveDimensions(policy, r)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}

			for _, dim := range dims {
				count, err := store.IncrWithTTL(ctx, dim.key, policy.window)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(dim.limit) {
					if logg != nil {
						fields := map[string]any{
							"scope":          dim.scope,
							"policy":         policy.name,
							"attempts":       count,
							"limit":          dim.limit,
							"window_seconds": int(policy.window.Seconds()),
						}
						for k, v := range dim.logFields {
							fields[k] = v
						}
						logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
					}
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveDimensions inspects the request and returns the counters to bump.
// Reading the email limit requires buffering the body, which is restored for
// the downstream handler.
func resolveDimensions(policy AuthRateLimitPolicy, r *http.Request) ([]counterDimension, error) {
	var dims []counterDimension

	if policy.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			dims = append(dims, counterDimension{
				scope:     "ip",
				key:       fmt.Sprintf("rl:ip:%s:%s", policy.name, ip),
				limit:     policy.ipLimit,
				logFields: map[string]any{"ip": ip},
			})
		}
	}

	if policy.emailLimit > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if email := emailFromBody(body); email != "" {
			digest := sha256.Sum256([]byte(email))
			hash := hex.EncodeToString(digest[:])
			dims = append(dims, counterDimension{
				scope:     "email",
				key:       fmt.Sprintf("rl:email:%s:%s", policy.name, hash),
				limit:     policy.emailLimit,
				logFields: map[string]any{"email_hash": hash},
			})
		}
	}

	return dims, nil
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
