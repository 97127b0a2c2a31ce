package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"plume/internal/model"
	"plume/internal/pkg"
	"plume/internal/repository/mysql"
)

type UserService struct {
	repo        *mysql.UserRepository
	smtp        pkg.SMTPConfig
	webOrigin   string
	resetSecret []byte
}

func NewUserService(db *gorm.DB, smtp pkg.SMTPConfig, webOrigin string, resetSecret []byte) *UserService {
	return &UserService{
		repo:        &mysql.UserRepository{DB: db},
		smtp:        smtp,
		webOrigin:   webOrigin,
		resetSecret: resetSecret,
	}
}

// Register 注册。校验失败和用户名/邮箱重复都走 FieldError，不抛错。
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, []FieldError, error) {
	if fe := validateRegister(username, email, password); fe != nil {
		return nil, fe, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err = s.repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 区分是用户名还是邮箱撞了唯一键
			if _, lookupErr := s.repo.FindByUsernameOrEmail(username); lookupErr == nil {
				return nil, fieldErr("username", "username already taken"), nil
			}
			return nil, fieldErr("email", "email already taken"), nil
		}
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("user registered")
	return user, nil, nil
}

func (s *UserService) Login(ctx context.Context, usernameOrEmail, password string) (*model.User, []FieldError, error) {
	user, err := s.repo.FindByUsernameOrEmail(usernameOrEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldErr("usernameOrEmail", "username does not exist"), nil
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, fieldErr("password", "incorrect password"), nil
	}
	return user, nil, nil
}

func (s *UserService) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.repo.FindByID(id)
}

// ForgotPassword 给已注册邮箱发送重置链接。邮箱不存在时静默成功，
// 避免暴露哪些邮箱已注册。
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := pkg.GenerateResetToken(s.resetSecret, user.ID)
	if err != nil {
		return err
	}

	html := pkg.ResetEmailHTML(s.webOrigin, token, pkg.ResetTokenTTL)
	if err = pkg.SendEmail(s.smtp, email, "重置密码", html); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("reset email send failed")
		return err
	}
	return nil
}

// ChangePassword 凭邮件里的重置 token 改密码
func (s *UserService) ChangePassword(ctx context.Context, token, newPassword string) (*model.User, []FieldError, error) {
	if len(newPassword) <= 4 {
		return nil, fieldErr("newPassword", "length must be greater than 4 characters"), nil
	}

	userID, err := pkg.ParseResetToken(s.resetSecret, token)
	if err != nil {
		return nil, fieldErr("token", "token expired"), nil
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldErr("token", "user no longer exists"), nil
		}
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return nil, nil, err
	}
	return user, nil, nil
}

func validateRegister(username, email, password string) []FieldError {
	if len(username) <= 4 {
		return fieldErr("username", "length must be greater than 4 characters")
	}
	if strings.Contains(username, "@") {
		return fieldErr("username", "cannot include an @")
	}
	if !strings.Contains(email, "@") {
		return fieldErr("email", "invalid email")
	}
	if len(password) <= 4 {
		return fieldErr("password", "length must be greater than 4 characters")
	}
	return nil
}
