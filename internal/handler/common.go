package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageNum 解析 ?page=，非法值一律当第一页
func pageNum(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return n
}

func notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{})
	c.Abort()
}

func serverError(c *gin.Context) {
	c.String(http.StatusInternalServerError, "internal server error")
	c.Abort()
}
