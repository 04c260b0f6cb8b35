package middleware

import (
	"net/http"

	"yatube/internal/pkg"
	"yatube/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	SessionCookie    = "yatube_session"

	LoginPath    = "/auth/login/"
	OnlyUserPath = "/auth/only_user/"
	OnlyAnonPath = "/auth/only_anon/"
)

// Identity 从会话 cookie 解出当前用户并注入上下文，匿名请求照常放行
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.Next()
			return
		}

		claims, err := pkg.ParseAccess(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		// redis 镜像校验：登出或在别处重新登录后旧 cookie 立即失效
		rSession := &redis.SessionRepository{}
		originToken, err := rSession.GetUserToken(claims.UserID)
		if err != nil || originToken != tokenStr {
			c.Next()
			return
		}

		// 校验通过后顺延过期时间
		_ = rSession.ExtendUserToken(claims.UserID)

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// RequireAuth 登录保护：匿名请求重定向到登录页并带上回跳地址
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserIDKey); !ok {
			c.Redirect(http.StatusFound, LoginPath+"?next="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OnlyUser 仅登录用户可见，匿名跳提示页
func OnlyUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserIDKey); !ok {
			c.Redirect(http.StatusFound, OnlyUserPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OnlyAnon 仅匿名可见（登录/注册页），已登录跳提示页
func OnlyAnon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserIDKey); ok {
			c.Redirect(http.StatusFound, OnlyAnonPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFromCtx 取当前登录用户 id，匿名为 0
func UserIDFromCtx(c *gin.Context) uint64 {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok2 := v.(uint64); ok2 {
			return id
		}
	}
	return 0
}
