package handler

import (
	"context"
	"errors"
	"net/http"

	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FollowHandler struct {
	svc   *service.FollowService
	users *service.UserService
	posts *service.PostService
}

func NewFollowHandler(svc *service.FollowService, users *service.UserService, posts *service.PostService) *FollowHandler {
	return &FollowHandler{svc: svc, users: users, posts: posts}
}

// FollowIndex 关注作者的帖子流
func (h *FollowHandler) FollowIndex(c *gin.Context) {
	userID := middleware.UserIDFromCtx(c)
	posts, page, err := h.posts.FollowedFeed(userID, pageNum(c))
	if err != nil {
		serverError(c)
		return
	}
	c.HTML(http.StatusOK, "follow.html", gin.H{
		"posts":   posts,
		"page":    page,
		"user_id": userID,
	})
}

// Follow 关注作者。自关注和重复关注都按无事发生处理，照常回主页
func (h *FollowHandler) Follow(c *gin.Context) {
	h.change(c, h.svc.Follow)
}

// Unfollow 取消关注。关系不存在同样按无事发生处理
func (h *FollowHandler) Unfollow(c *gin.Context) {
	h.change(c, h.svc.Unfollow)
}

func (h *FollowHandler) change(c *gin.Context, op func(ctx context.Context, followerID, authorID uint64) (bool, error)) {
	username := c.Param("username")
	author, err := h.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c)
		return
	}

	userID := middleware.UserIDFromCtx(c)
	profileURL := "/profile/" + username + "/"

	if _, err := op(c.Request.Context(), userID, author.ID); err != nil {
		if errors.Is(err, service.ErrSelfFollow) {
			c.Redirect(http.StatusFound, profileURL)
			return
		}
		serverError(c)
		return
	}

	c.Redirect(http.StatusFound, profileURL)
}
