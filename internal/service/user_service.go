package service

import (
	"errors"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/mysql"
	"yatube/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type UserService struct {
	repo     *mysql.UserRepository
	rSession *redis.SessionRepository
	emailSvc *EmailService
}

func NewUserService(db *gorm.DB, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: db},
		rSession: &redis.SessionRepository{},
		emailSvc: emailSvc,
	}
}

// Register 注册。重复与否先显式查询，不靠解析约束错误串
func (s *UserService) Register(username, email, password string) error {
	if _, err := s.repo.FindByUsername(username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := s.repo.FindByEmail(email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.Create(&model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	})
}

// Login 校验密码并签发会话 token，token 同时写入 redis 镜像
func (s *UserService) Login(login, password string) (*model.User, string, error) {
	user, err := s.repo.FindByLogin(login)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := pkg.GenerateAccess(user.ID)
	if err != nil {
		return nil, "", err
	}
	if err = s.rSession.AddUserToken(user.ID, token); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Logout(usrID uint64) error {
	return s.rSession.DeleteUserToken(usrID)
}

func (s *UserService) GetByID(id uint64) (*model.User, error) {
	return s.repo.FindByID(id)
}

func (s *UserService) GetByUsername(username string) (*model.User, error) {
	return s.repo.FindByUsername(username)
}

// ChangePassword 登录态修改密码，成功后作废当前会话
func (s *UserService) ChangePassword(usrID uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(usrID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return errors.New("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return err
	}
	return s.Logout(usrID)
}

// SendResetCode 找回密码：只有注册过的邮箱才发验证码
func (s *UserService) SendResetCode(email string) error {
	if _, err := s.repo.FindByEmail(email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("email is not registered")
		}
		return err
	}
	return s.emailSvc.SendResetCode(email)
}

// ResetPassword 凭邮箱验证码重置密码
func (s *UserService) ResetPassword(email, code, newPassword string) error {
	ok, err := s.emailSvc.VerifyCode("reset", email, code)
	if err != nil || !ok {
		return errors.New("verification failed")
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(user, string(hash))
}
