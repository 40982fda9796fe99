package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/middleware/ratelimiter"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// RateLimit throttles requests per identity. Admins bypass the limiter so an
// aggressive policy cannot lock out operators.
func RateLimit(rl *ratelimiter.KeyedLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := GetUserFromContext(r); user != nil && user.Admin {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIdentity keys the limiter by the authenticated user. Requires an auth
// middleware earlier in the chain.
func UserIdentity(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", errors.New("can't resolve user identity")
	}
	return fmt.Sprintf("user_%d", user.Id), nil
}

// IPIdentity keys the limiter by client address, for unauthenticated routes
// like login. Only RemoteAddr is trusted; forwarded headers are spoofable
// without a reverse proxy in front.
func IPIdentity(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
