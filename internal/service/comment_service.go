package service

import (
	"yatube/internal/model"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommentService struct {
	repo     *mysql.CommentRepository
	postRepo *mysql.PostRepository
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		repo:     &mysql.CommentRepository{DB: db},
		postRepo: &mysql.PostRepository{DB: db},
	}
}

// AddComment 评论只能新增，没有编辑和删除
func (s *CommentService) AddComment(authorID, postID uint64, text string) (*model.Comment, error) {
	if text == "" {
		return nil, ErrTextRequired
	}
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.repo.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}
