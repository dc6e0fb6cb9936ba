package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func refreshDenyKey(jti string) string {
	return fmt.Sprintf("auth:refresh_deny:%s", jti)
}

// DenyRefreshToken 将刷新令牌 JTI 加入拒绝名单，直至其自然过期
func DenyRefreshToken(ctx context.Context, jti string, ttl time.Duration) error {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return SetString(ctx, refreshDenyKey(trimmed), "1", ttl)
}

// IsRefreshTokenDenied 判断刷新令牌 JTI 是否已被拒绝
func IsRefreshTokenDenied(ctx context.Context, jti string) (bool, error) {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return false, nil
	}
	return Exists(ctx, refreshDenyKey(trimmed))
}
