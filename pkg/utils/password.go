package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword 生成密码哈希
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword 校验密码
func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// GenerateUnusablePasswordHash 为占位员工账号生成不可登录的随机密码哈希
// 入职完成前账号不可用
func GenerateUnusablePasswordHash() string {
	random, err := GenerateURLToken(32)
	if err != nil {
		random = "unusable-placeholder-password"
	}
	hashed, err := HashPassword(random)
	if err != nil {
		return "!" + random
	}
	return hashed
}
