package mysql

import (
	"yatube/internal/model"

	"gorm.io/gorm"
)

// 首页/小组/个人页统一按发布时间倒序，同一时刻按 id 倒序
const feedOrder = "created_at DESC, id DESC"

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.Preload("Author").Preload("Group").First(&post, id).Error
	return &post, err
}

// Update 编辑帖子，只动 text/group_id/image，发布时间不变
func (r *PostRepository) Update(id uint64, text string, groupID *uint64, image string) error {
	values := map[string]any{
		"text":     text,
		"group_id": groupID,
	}
	if image != "" {
		values["image"] = image
	}
	return r.DB.Model(&model.Post{}).Where("id = ?", id).Updates(values).Error
}

func (r *PostRepository) CountAll() (int64, error) {
	var n int64
	err := r.DB.Model(&model.Post{}).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListAll(offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Order(feedOrder).Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *PostRepository) CountByGroup(groupID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Post{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListByGroup(groupID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Where("group_id = ?", groupID).
		Order(feedOrder).Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *PostRepository) CountByAuthor(authorID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListByAuthor(authorID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Where("author_id = ?", authorID).
		Order(feedOrder).Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// followedAuthors 关注作者子查询
func (r *PostRepository) followedAuthors(followerID uint64) *gorm.DB {
	return r.DB.Model(&model.Follow{}).Select("author_id").Where("follower_id = ?", followerID)
}

func (r *PostRepository) CountFollowed(followerID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Post{}).
		Where("author_id IN (?)", r.followedAuthors(followerID)).Count(&n).Error
	return n, err
}

func (r *PostRepository) ListFollowed(followerID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Preload("Author").Preload("Group").
		Where("author_id IN (?)", r.followedAuthors(followerID)).
		Order(feedOrder).Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
