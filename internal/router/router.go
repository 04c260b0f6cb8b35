package router

import (
	"html/template"
	"net/http"

	"yatube/internal/config"
	"yatube/internal/handler"
	"yatube/internal/middleware"
	"yatube/internal/pkg"
	"yatube/internal/pkg/storage"
	"yatube/internal/repository/redis"
	"yatube/internal/service"
	"yatube/web"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InitRouter 组装服务、handler 和全部路由
func InitRouter(cfg *config.Config, db *gorm.DB, media storage.Storage) *gin.Engine {
	r := gin.Default()

	tpl := template.Must(template.ParseFS(web.Templates, "templates/*.html"))
	r.SetHTMLTemplate(tpl)

	emailCfg := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	emailSvc := service.NewEmailService(emailCfg)
	userSvc := service.NewUserService(db, emailSvc)
	postSvc := service.NewPostService(db, cfg.FeedPageSize)
	commentSvc := service.NewCommentService(db)
	followSvc := service.NewFollowService(db)

	user := handler.NewUserHandler(userSvc, postSvc, followSvc)
	post := handler.NewPostHandler(postSvc, userSvc, media)
	comment := handler.NewCommentHandler(commentSvc)
	follow := handler.NewFollowHandler(followSvc, userSvc, postSvc)

	pageCache := &redis.PageCacheRepository{TTL: cfg.IndexCacheTTL}

	r.Use(middleware.Identity())

	// 首页走整页缓存，期间的帖子增删要等过期或显式清除才可见
	r.GET("/", middleware.PageCache(pageCache), post.Index)
	r.GET("/group/:slug/", post.GroupList)
	r.GET("/profile/:username/", user.Profile)
	r.GET("/posts/:id/", post.PostDetail)

	// 登录保护的帖子相关接口
	authed := r.Group("", middleware.RequireAuth())
	{
		authed.GET("/create/", post.PostCreate)
		authed.POST("/create/", post.PostCreate)
		authed.GET("/posts/:id/edit/", post.PostEdit)
		authed.POST("/posts/:id/edit/", post.PostEdit)
		authed.POST("/posts/:id/comment/", comment.AddComment)
		authed.GET("/follow/", follow.FollowIndex)
		authed.GET("/profile/:username/follow/", follow.Follow)
		authed.GET("/profile/:username/unfollow/", follow.Unfollow)
	}

	// 注册 / 登录 / 找回密码
	auth := r.Group("/auth")
	{
		anon := auth.Group("", middleware.OnlyAnon())
		{
			anon.GET("/signup/", user.Signup)
			anon.POST("/signup/", user.Signup)
			anon.GET("/login/", user.Login)
			anon.POST("/login/", user.Login)
		}

		auth.GET("/logout/", user.Logout)

		change := auth.Group("", middleware.OnlyUser())
		{
			change.GET("/password_change/", user.PasswordChange)
			change.POST("/password_change/", user.PasswordChange)
		}

		auth.GET("/password_reset/", user.PasswordReset)
		auth.POST("/password_reset/", user.PasswordReset)
		auth.GET("/password_reset/confirm/", user.PasswordResetConfirm)
		auth.POST("/password_reset/confirm/", user.PasswordResetConfirm)

		auth.GET("/only_user/", user.OnlyUser)
		auth.GET("/only_anon/", user.OnlyAnon)
	}

	// 本地媒体文件
	if cfg.MediaDriver == "local" {
		r.Static("/media", cfg.MediaDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{})
	})

	return r
}
