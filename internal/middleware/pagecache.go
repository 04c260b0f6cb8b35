package middleware

import (
	"bytes"
	"net/http"

	"yatube/internal/pkg"
	"yatube/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

type cacheWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache 整页响应缓存。命中直接回放快照；未命中则边写边抄，
// 成功响应按 TTL 存入 redis。键含查询串，分页各自成键。
func PageCache(repo *redis.PageCacheRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if cached, err := repo.Get(key); err == nil {
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		err := repo.Set(key, &redis.CachedPage{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		})
		if err != nil {
			pkg.Logger.Warn().Err(err).Str("key", key).Msg("page cache store failed")
		}
	}
}
