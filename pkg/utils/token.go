package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// LifecycleTokenTTL 所有生命周期 token 的有效期
const LifecycleTokenTTL = 7 * 24 * time.Hour

// GenerateURLToken 生成 URL-safe 的随机 token，长度约为 4/3*n 字符
// n 为原始随机字节数，推荐 24 或 32
func GenerateURLToken(n int) (string, error) {
	if n <= 0 {
		n = 24
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// 使用 RawURLEncoding，避免出现 '=' 填充与 '+' '/' 字符
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateLifecycleToken issues a bearer token for one lifecycle record.
// 返回明文（只在此刻交给调用方一次）、存储用的 SHA-256 哈希和过期时间。
func GenerateLifecycleToken() (plain, hashed string, expiry time.Time, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", time.Time{}, err
	}
	plain = hex.EncodeToString(b)
	hashed = HashToken(plain)
	expiry = time.Now().Add(LifecycleTokenTTL)
	return plain, hashed, expiry, nil
}

// HashToken 与签发时相同的单向哈希；resolve 时用它查库，明文从不落库
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// IsExpired 纯函数过期判断
func IsExpired(expiry time.Time) bool {
	return expiry.Before(time.Now())
}
