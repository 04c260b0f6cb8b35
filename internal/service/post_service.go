package service

import (
	"errors"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/policy"
	"yatube/internal/repository/mysql"

	"gorm.io/gorm"
)

var (
	ErrTextRequired  = errors.New("text required")
	ErrGroupNotFound = errors.New("group not found")
	ErrNotOwner      = errors.New("not the author")
)

type PostService struct {
	repo        *mysql.PostRepository
	groupRepo   *mysql.GroupRepository
	commentRepo *mysql.CommentRepository
	pageSize    int
}

func NewPostService(db *gorm.DB, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &PostService{
		repo:        &mysql.PostRepository{DB: db},
		groupRepo:   &mysql.GroupRepository{DB: db},
		commentRepo: &mysql.CommentRepository{DB: db},
		pageSize:    pageSize,
	}
}

func (s *PostService) PageSize() int { return s.pageSize }

// CreatePost 作者固定取当前登录者，不信任表单里的作者字段
func (s *PostService) CreatePost(authorID uint64, text string, groupID *uint64, image string) (*model.Post, error) {
	if text == "" {
		return nil, ErrTextRequired
	}
	if groupID != nil {
		if _, err := s.groupRepo.FindByID(*groupID); err != nil {
			return nil, ErrGroupNotFound
		}
	}

	post := &model.Post{
		Text:     text,
		AuthorID: authorID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost 仅作者本人可编辑；校验不过不落任何变更
func (s *PostService) EditPost(userID, postID uint64, text string, groupID *uint64, image string) error {
	post, err := s.repo.FindByID(postID)
	if err != nil {
		return err
	}
	if !policy.Allow(policy.ActionEditPost, userID, post) {
		return ErrNotOwner
	}
	if text == "" {
		return ErrTextRequired
	}
	if groupID != nil {
		if _, err := s.groupRepo.FindByID(*groupID); err != nil {
			return ErrGroupNotFound
		}
	}
	return s.repo.Update(postID, text, groupID, image)
}

func (s *PostService) GetPost(id uint64) (*model.Post, []model.Comment, error) {
	post, err := s.repo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

func (s *PostService) Groups() ([]model.Group, error) {
	return s.groupRepo.List()
}

func (s *PostService) GetGroup(slug string) (*model.Group, error) {
	return s.groupRepo.FindBySlug(slug)
}

func (s *PostService) GetGroupByID(id uint64) (*model.Group, error) {
	return s.groupRepo.FindByID(id)
}

// IndexFeed 全站帖子流
func (s *PostService) IndexFeed(pageNum int) ([]model.Post, pkg.Page, error) {
	total, err := s.repo.CountAll()
	if err != nil {
		return nil, pkg.Page{}, err
	}
	page := pkg.Paginate(pageNum, s.pageSize, total)
	list, err := s.repo.ListAll(page.Offset(), page.Size)
	return list, page, err
}

// GroupFeed 小组帖子流
func (s *PostService) GroupFeed(slug string, pageNum int) (*model.Group, []model.Post, pkg.Page, error) {
	group, err := s.groupRepo.FindBySlug(slug)
	if err != nil {
		return nil, nil, pkg.Page{}, err
	}
	total, err := s.repo.CountByGroup(group.ID)
	if err != nil {
		return nil, nil, pkg.Page{}, err
	}
	page := pkg.Paginate(pageNum, s.pageSize, total)
	list, err := s.repo.ListByGroup(group.ID, page.Offset(), page.Size)
	return group, list, page, err
}

// AuthorFeed 作者帖子流
func (s *PostService) AuthorFeed(authorID uint64, pageNum int) ([]model.Post, pkg.Page, error) {
	total, err := s.repo.CountByAuthor(authorID)
	if err != nil {
		return nil, pkg.Page{}, err
	}
	page := pkg.Paginate(pageNum, s.pageSize, total)
	list, err := s.repo.ListByAuthor(authorID, page.Offset(), page.Size)
	return list, page, err
}

// FollowedFeed 关注作者的帖子流
func (s *PostService) FollowedFeed(followerID uint64, pageNum int) ([]model.Post, pkg.Page, error) {
	total, err := s.repo.CountFollowed(followerID)
	if err != nil {
		return nil, pkg.Page{}, err
	}
	page := pkg.Paginate(pageNum, s.pageSize, total)
	list, err := s.repo.ListFollowed(followerID, page.Offset(), page.Size)
	return list, page, err
}
