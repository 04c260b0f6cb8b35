package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"yatube/internal/middleware"
	"yatube/internal/pkg/storage"
	"yatube/internal/policy"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	svc   *service.PostService
	users *service.UserService
	media storage.Storage
}

func NewPostHandler(svc *service.PostService, users *service.UserService, media storage.Storage) *PostHandler {
	return &PostHandler{svc: svc, users: users, media: media}
}

type postForm struct {
	Text  string `form:"text"`
	Group string `form:"group"`
}

// parsePostForm 解析发帖表单，返回字段级错误供模板回显
func (h *PostHandler) parsePostForm(c *gin.Context) (string, *uint64, string, map[string]string) {
	var form postForm
	_ = c.ShouldBind(&form)

	fieldErrors := map[string]string{}
	if form.Text == "" {
		fieldErrors["text"] = "Text is required."
	}

	var groupID *uint64
	if form.Group != "" {
		id, err := strconv.ParseUint(form.Group, 10, 64)
		if err != nil {
			fieldErrors["group"] = "Select a valid group."
		} else if _, gerr := h.svc.GetGroupByID(id); gerr != nil {
			fieldErrors["group"] = "Select a valid group."
		} else {
			groupID = &id
		}
	}

	// 图片可选，选了才存；先过完字段校验再落盘，校验失败不能留下孤儿文件
	var image string
	file, err := c.FormFile("image")
	if err == nil && file != nil && len(fieldErrors) == 0 {
		f, err := file.Open()
		if err != nil {
			fieldErrors["image"] = "Could not read the uploaded file."
		} else {
			defer f.Close()
			url, err := h.media.Save(c.Request.Context(), file.Filename,
				file.Header.Get("Content-Type"), f)
			if err != nil {
				fieldErrors["image"] = "Could not store the uploaded file."
			} else {
				image = url
			}
		}
	}

	return form.Text, groupID, image, fieldErrors
}

// Index 首页帖子流
func (h *PostHandler) Index(c *gin.Context) {
	posts, page, err := h.svc.IndexFeed(pageNum(c))
	if err != nil {
		serverError(c)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"posts":   posts,
		"page":    page,
		"user_id": middleware.UserIDFromCtx(c),
	})
}

// GroupList 小组帖子流
func (h *PostHandler) GroupList(c *gin.Context) {
	group, posts, page, err := h.svc.GroupFeed(c.Param("slug"), pageNum(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c)
		return
	}
	c.HTML(http.StatusOK, "group_list.html", gin.H{
		"group":   group,
		"posts":   posts,
		"page":    page,
		"user_id": middleware.UserIDFromCtx(c),
	})
}

// PostDetail 帖子详情 + 评论列表
func (h *PostHandler) PostDetail(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return
	}

	post, comments, err := h.svc.GetPost(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c)
		return
	}

	userID := middleware.UserIDFromCtx(c)
	c.HTML(http.StatusOK, "post_detail.html", gin.H{
		"post":      post,
		"comments":  comments,
		"is_author": userID != 0 && userID == post.AuthorID,
		"user_id":   userID,
	})
}

// PostCreate 发帖页
func (h *PostHandler) PostCreate(c *gin.Context) {
	userID := middleware.UserIDFromCtx(c)
	groups, err := h.svc.Groups()
	if err != nil {
		serverError(c)
		return
	}

	if c.Request.Method == http.MethodGet {
		c.HTML(http.StatusOK, "create_post.html", gin.H{
			"groups":  groups,
			"errors":  map[string]string{},
			"user_id": userID,
		})
		return
	}

	text, groupID, image, fieldErrors := h.parsePostForm(c)
	if len(fieldErrors) == 0 {
		if _, err := h.svc.CreatePost(userID, text, groupID, image); err != nil {
			if errors.Is(err, service.ErrGroupNotFound) {
				fieldErrors["group"] = "Select a valid group."
			} else {
				serverError(c)
				return
			}
		}
	}
	if len(fieldErrors) > 0 {
		// 校验失败重新渲染表单，什么都不落库
		c.HTML(http.StatusOK, "create_post.html", gin.H{
			"groups":     groups,
			"errors":     fieldErrors,
			"form_text":  text,
			"form_group": c.PostForm("group"),
			"user_id":    userID,
		})
		return
	}

	// 发布成功跳到作者自己的主页
	author, err := h.users.GetByID(userID)
	if err != nil {
		serverError(c)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// PostEdit 编辑页，非作者一律跳回详情
func (h *PostHandler) PostEdit(c *gin.Context) {
	userID := middleware.UserIDFromCtx(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return
	}

	post, _, err := h.svc.GetPost(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c)
		return
	}

	detailURL := fmt.Sprintf("/posts/%d/", postID)
	if !policy.Allow(policy.ActionEditPost, userID, post) {
		c.Redirect(http.StatusFound, detailURL)
		return
	}

	groups, err := h.svc.Groups()
	if err != nil {
		serverError(c)
		return
	}

	if c.Request.Method == http.MethodGet {
		formGroup := ""
		if post.GroupID != nil {
			formGroup = strconv.FormatUint(*post.GroupID, 10)
		}
		c.HTML(http.StatusOK, "create_post.html", gin.H{
			"is_edit":    true,
			"post":       post,
			"groups":     groups,
			"errors":     map[string]string{},
			"form_text":  post.Text,
			"form_group": formGroup,
			"user_id":    userID,
		})
		return
	}

	text, groupID, image, fieldErrors := h.parsePostForm(c)
	if len(fieldErrors) == 0 {
		if err := h.svc.EditPost(userID, postID, text, groupID, image); err != nil {
			switch {
			case errors.Is(err, service.ErrNotOwner):
				c.Redirect(http.StatusFound, detailURL)
				return
			case errors.Is(err, service.ErrGroupNotFound):
				fieldErrors["group"] = "Select a valid group."
			default:
				serverError(c)
				return
			}
		}
	}
	if len(fieldErrors) > 0 {
		c.HTML(http.StatusOK, "create_post.html", gin.H{
			"is_edit":    true,
			"post":       post,
			"groups":     groups,
			"errors":     fieldErrors,
			"form_text":  text,
			"form_group": c.PostForm("group"),
			"user_id":    userID,
		})
		return
	}

	c.Redirect(http.StatusFound, detailURL)
}
