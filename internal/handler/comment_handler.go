package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// AddComment 发表评论，成功与空文本都回到帖子详情
func (h *CommentHandler) AddComment(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return
	}

	userID := middleware.UserIDFromCtx(c)
	text := c.PostForm("text")
	detailURL := fmt.Sprintf("/posts/%d/", postID)

	if _, err := h.svc.AddComment(userID, postID, text); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			notFound(c)
		case errors.Is(err, service.ErrTextRequired):
			// 空评论不落库，直接回详情
			c.Redirect(http.StatusFound, detailURL)
		default:
			serverError(c)
		}
		return
	}

	c.Redirect(http.StatusFound, detailURL)
}
