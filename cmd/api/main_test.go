package main

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/winestock/internal/infrastructure/logger"
)

func TestServe(t *testing.T) {
	t.Run("端口被占用时返回错误", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
		done := make(chan error, 1)
		go func() { done <- serve(srv, make(chan os.Signal), logger.NewNop()) }()

		select {
		case err := <-done:
			assert.ErrorContains(t, err, "HTTP服务启动失败")
		case <-time.After(5 * time.Second):
			t.Fatal("serve未返回")
		}
	})

	t.Run("收到信号后优雅关闭", func(t *testing.T) {
		srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
		quit := make(chan os.Signal, 1)
		quit <- syscall.SIGTERM

		assert.NoError(t, serve(srv, quit, logger.NewNop()))
	})
}
