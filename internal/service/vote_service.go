package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plume/internal/repository/mysql"
)

type VoteService struct {
	repo *mysql.VoteRepository
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{repo: &mysql.VoteRepository{DB: db}}
}

// Vote 对帖子投票。value 只接受 ±1，其他值按校验错误拒绝。
// 帖子不存在时返回 false 不报错；重复同值投票是幂等成功。
func (s *VoteService) Vote(ctx context.Context, userID, postID uint64, value int) (bool, error) {
	if userID == 0 {
		return false, ErrNotAuthenticated
	}
	if value != 1 && value != -1 {
		return false, ErrInvalidVote
	}

	_, err := s.repo.Cast(ctx, userID, postID, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
