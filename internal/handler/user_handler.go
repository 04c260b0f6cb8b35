package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionMaxAge = 60 * 30

type UserHandler struct {
	svc    *service.UserService
	posts  *service.PostService
	follow *service.FollowService
}

func NewUserHandler(svc *service.UserService, posts *service.PostService, follow *service.FollowService) *UserHandler {
	return &UserHandler{svc: svc, posts: posts, follow: follow}
}

// Profile 作者主页：个人帖子流 + 关注状态
func (h *UserHandler) Profile(c *gin.Context) {
	author, err := h.svc.GetByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c)
		return
	}

	posts, page, err := h.posts.AuthorFeed(author.ID, pageNum(c))
	if err != nil {
		serverError(c)
		return
	}

	userID := middleware.UserIDFromCtx(c)
	following := false
	if userID != 0 {
		following, _ = h.follow.IsFollowing(c.Request.Context(), userID, author.ID)
	}

	c.HTML(http.StatusOK, "profile.html", gin.H{
		"author":    author,
		"posts":     posts,
		"page":      page,
		"following": following,
		"is_self":   userID == author.ID,
		"user_id":   userID,
	})
}

// Signup 注册页
func (h *UserHandler) Signup(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.HTML(http.StatusOK, "signup.html", gin.H{"errors": map[string]string{}})
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password1 := c.PostForm("password1")
	password2 := c.PostForm("password2")

	fieldErrors := map[string]string{}
	if username == "" {
		fieldErrors["username"] = "Username is required."
	}
	if email == "" || !strings.Contains(email, "@") {
		fieldErrors["email"] = "Enter a valid email address."
	}
	if len(password1) < 8 {
		fieldErrors["password1"] = "Password must be at least 8 characters."
	}
	if password1 != password2 {
		fieldErrors["password2"] = "Passwords do not match."
	}

	if len(fieldErrors) == 0 {
		switch err := h.svc.Register(username, email, password1); {
		case err == nil:
		case errors.Is(err, service.ErrUsernameTaken):
			fieldErrors["username"] = "This username is already taken."
		case errors.Is(err, service.ErrEmailTaken):
			fieldErrors["email"] = "This email is already registered."
		default:
			serverError(c)
			return
		}
	}

	if len(fieldErrors) > 0 {
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"errors":        fieldErrors,
			"form_username": username,
			"form_email":    email,
		})
		return
	}

	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// safeNext 只允许站内路径回跳，"//host" 形式是协议相对跳转，一并挡掉
func safeNext(v string) bool {
	return strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//")
}

// Login 登录页，支持 ?next= 回跳
func (h *UserHandler) Login(c *gin.Context) {
	next := c.Query("next")
	if !safeNext(next) {
		next = "/"
	}

	if c.Request.Method == http.MethodGet {
		c.HTML(http.StatusOK, "login.html", gin.H{"next": next, "errors": map[string]string{}})
		return
	}

	if v := c.PostForm("next"); safeNext(v) {
		next = v
	}

	_, token, err := h.svc.Login(c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"next":          next,
			"errors":        map[string]string{"username": "Invalid username or password."},
			"form_username": c.PostForm("username"),
		})
		return
	}

	c.SetCookie(middleware.SessionCookie, token, sessionMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, next)
}

// Logout 退出登录：作废 redis 镜像并清 cookie
func (h *UserHandler) Logout(c *gin.Context) {
	if userID := middleware.UserIDFromCtx(c); userID != 0 {
		_ = h.svc.Logout(userID)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// PasswordChange 登录态修改密码
func (h *UserHandler) PasswordChange(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.HTML(http.StatusOK, "password_change.html", gin.H{
			"errors":  map[string]string{},
			"user_id": middleware.UserIDFromCtx(c),
		})
		return
	}

	old := c.PostForm("old_password")
	new1 := c.PostForm("new_password1")
	new2 := c.PostForm("new_password2")

	fieldErrors := map[string]string{}
	if len(new1) < 8 {
		fieldErrors["new_password1"] = "Password must be at least 8 characters."
	}
	if new1 != new2 {
		fieldErrors["new_password2"] = "Passwords do not match."
	}

	userID := middleware.UserIDFromCtx(c)
	if len(fieldErrors) == 0 {
		if err := h.svc.ChangePassword(userID, old, new1); err != nil {
			fieldErrors["old_password"] = "Old password is incorrect."
		}
	}

	if len(fieldErrors) > 0 {
		c.HTML(http.StatusOK, "password_change.html", gin.H{
			"errors":  fieldErrors,
			"user_id": userID,
		})
		return
	}

	// 改密后会话已作废，重新登录
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// resetConfirmURL 邮箱要过 query 转义，地址里的 + 和 & 不能破坏查询串
func resetConfirmURL(email string) string {
	return "/auth/password_reset/confirm/?" + url.Values{"email": {email}}.Encode()
}

// PasswordReset 找回密码：发送邮箱验证码
func (h *UserHandler) PasswordReset(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.HTML(http.StatusOK, "password_reset.html", gin.H{"errors": map[string]string{}})
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	if err := h.svc.SendResetCode(email); err != nil {
		c.HTML(http.StatusOK, "password_reset.html", gin.H{
			"errors":     map[string]string{"email": err.Error()},
			"form_email": email,
		})
		return
	}

	c.Redirect(http.StatusFound, resetConfirmURL(email))
}

// PasswordResetConfirm 凭验证码设置新密码
func (h *UserHandler) PasswordResetConfirm(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		c.HTML(http.StatusOK, "password_reset_confirm.html", gin.H{
			"errors":     map[string]string{},
			"form_email": c.Query("email"),
		})
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	code := c.PostForm("code")
	new1 := c.PostForm("new_password1")
	new2 := c.PostForm("new_password2")

	fieldErrors := map[string]string{}
	if len(new1) < 8 {
		fieldErrors["new_password1"] = "Password must be at least 8 characters."
	}
	if new1 != new2 {
		fieldErrors["new_password2"] = "Passwords do not match."
	}

	if len(fieldErrors) == 0 {
		if err := h.svc.ResetPassword(email, code, new1); err != nil {
			fieldErrors["code"] = "Invalid or expired code."
		}
	}

	if len(fieldErrors) > 0 {
		c.HTML(http.StatusOK, "password_reset_confirm.html", gin.H{
			"errors":     fieldErrors,
			"form_email": email,
		})
		return
	}

	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// OnlyUser 登录用户专属提示页
func (h *UserHandler) OnlyUser(c *gin.Context) {
	c.HTML(http.StatusOK, "only_user.html", gin.H{"user_id": middleware.UserIDFromCtx(c)})
}

// OnlyAnon 匿名专属提示页
func (h *UserHandler) OnlyAnon(c *gin.Context) {
	c.HTML(http.StatusOK, "only_anon.html", gin.H{"user_id": middleware.UserIDFromCtx(c)})
}
