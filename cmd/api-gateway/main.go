package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/YardLink/YardLink/internal/common/middleware"
)

// 说明：
// 面板/大屏的 HTTP 接入规划走 grpc-gateway。业务 proto 尚未补齐，
// 这里先提供一个最小可运行的 HTTP 入口骨架：
// - /healthz: 网关自身健康检查（带令牌桶限流）
// 后续接入时：
// 1) 在 internal/api/proto 下补齐 yard 业务 proto，并添加 google.api.http 注解
// 2) 用 protoc 生成 gateway handlers，把 HTTP 映射到 yard-service 的 gRPC
// 3) 订阅流（Subscribe）对外以 SSE/WebSocket 暴露

var (
	listenAddr = flag.String("listen", ":8080", "HTTP listen address")
)

func main() {
	flag.Parse()

	limiter := middleware.NewTokenBucket(100, 50)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(r.Context()) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Printf("api-gateway listening on %s\n", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}
