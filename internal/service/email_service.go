package service

import (
	"yatube/internal/pkg"
	"yatube/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

// SendResetCode 发送重置密码验证码
func (s *EmailService) SendResetCode(email string) error {
	code, err := pkg.NewResetCode()
	if err != nil {
		return err
	}

	// 先写入pending键
	if err = s.rds.CodePending("reset", email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML("password reset", code, redis.DefaultEmailCodeTTL)
	if err = pkg.SendEmail(s.emailCfg, email, "Yatube password reset code", html); err != nil {
		return err
	}

	// 邮件发送后再将pending转为confirmed
	if err = s.rds.MarkCodeConfirmed("reset", email); err != nil {
		_ = s.rds.DeleteCodePending("reset", email)
		return err
	}

	return nil
}

// VerifyCode 校验验证码并一次性删除
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetCodeConfirmed(scope, email)
	if err != nil {
		// 不存在或已过期
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err = s.rds.DeleteCodeConfirmed(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
