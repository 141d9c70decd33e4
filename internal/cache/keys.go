package cache

import "fmt"

// RateLimitKey is the counter for an authenticated user.
func RateLimitKey(username string) string {
	return fmt.Sprintf("ratelimit:user:%s", username)
}

// LoginRateLimitKey is the counter for login attempts from one client address.
func LoginRateLimitKey(remoteAddr string) string {
	return fmt.Sprintf("ratelimit:login:%s", remoteAddr)
}
