package pkg

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger 全局日志实例
var Logger zerolog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitLogger 根据配置初始化全局日志
func InitLogger(level string, json bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if json {
		Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
