package token

import (
	"strconv"
	"time"
)

// IsExpired reports whether expiresAt (Unix seconds) is unset or not in the
// future. A token expiring in the current second is expired.
func IsExpired(expiresAt int64) bool {
	return IsExpiredAt(expiresAt, time.Now())
}

// IsExpiredAt is [IsExpired] evaluated against an explicit clock reading.
func IsExpiredAt(expiresAt int64, now time.Time) bool {
	if expiresAt == 0 {
		return true
	}
	return now.Unix() >= expiresAt
}

// TimeUntilExpiry returns the whole seconds left before expiresAt, or 0 when
// expiresAt is unset or already passed.
func TimeUntilExpiry(expiresAt int64) int64 {
	return TimeUntilExpiryAt(expiresAt, time.Now())
}

// TimeUntilExpiryAt is [TimeUntilExpiry] evaluated against an explicit clock
// reading.
func TimeUntilExpiryAt(expiresAt int64, now time.Time) int64 {
	if expiresAt == 0 {
		return 0
	}
	remaining := expiresAt - now.Unix()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatRemaining renders a remaining duration in seconds:
//
//	<= 0     "Expired"
//	< 60     "42s"
//	< 3600   "5m 30s"
//	>= 3600  "1h 2m"   (seconds dropped)
func FormatRemaining(seconds int64) string {
	if seconds <= 0 {
		return "Expired"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return strconv.FormatInt(hours, 10) + "h " + strconv.FormatInt(minutes, 10) + "m"
	case minutes > 0:
		return strconv.FormatInt(minutes, 10) + "m " + strconv.FormatInt(secs, 10) + "s"
	default:
		return strconv.FormatInt(secs, 10) + "s"
	}
}

// ResolveExpiry picks the best available absolute expiry for a freshly issued
// token: the provider's expires_at, then now+expires_in, then the exp claim of
// the access token itself. It returns 0 when none is available.
func ResolveExpiry(expiresAt, expiresIn int64, accessToken string, now time.Time) int64 {
	if expiresAt > 0 {
		return expiresAt
	}
	if expiresIn > 0 {
		return now.Unix() + expiresIn
	}
	if accessToken == "" {
		return 0
	}
	claims, err := ParseClaims(accessToken)
	if err != nil {
		return 0
	}
	return claims.ExpiresAtUnix()
}
