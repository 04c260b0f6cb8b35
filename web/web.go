// Package web 内嵌页面模板，免除对运行目录的依赖
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
