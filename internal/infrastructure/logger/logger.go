package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/winestock/internal/infrastructure/config"
)

// New 根据日志配置创建logrus实例
// - format: json 使用JSONFormatter，其余使用带时间戳的TextFormatter
// - output: stdout | stderr | 文件路径(追加写入)
func New(cfg *config.Config) (*logrus.Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Log.Level, err)
	}
	l.SetLevel(level)

	if cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out, err := openOutput(cfg.Log.Output)
	if err != nil {
		return nil, err
	}
	l.SetOutput(out)
	l.SetReportCaller(cfg.Log.EnableCaller)

	return l, nil
}

// NewNop 丢弃所有输出的logger，测试使用
func NewNop() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		return f, nil
	}
}

// LogError 以统一字段记录错误
func LogError(logger logrus.FieldLogger, moduleName, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
