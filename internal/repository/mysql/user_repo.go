package mysql

import (
	"plume/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户表访问。用户名和邮箱各有唯一索引，
// 冲突经 TranslateError 统一成 gorm.ErrDuplicatedKey，注册路径靠它分辨撞了哪个。
type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

// FindByUsernameOrEmail 登录入口：同一个参数既可以是用户名也可以是邮箱
func (r *UserRepository) FindByUsernameOrEmail(name string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ? OR email = ?", name, name).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindByEmail 密码重置流程专用，重置链接只发给邮箱
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

// UpdatePassword 只按 id 更新 password 一列
func (r *UserRepository) UpdatePassword(user *model.User, hash string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", user.ID).
		Update("password", hash).Error
}
