package pkg

import (
	cryptoRand "crypto/rand"
	"fmt"
	"math/big"
)

// ResetCodeLength 找回密码验证码位数，和邮件模板里的说明保持一致
const ResetCodeLength = 6

// NewResetCode 生成定长数字验证码，不足位补前导零
func NewResetCode() (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < ResetCodeLength; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	x, err := cryptoRand.Int(cryptoRand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", ResetCodeLength, x), nil
}
