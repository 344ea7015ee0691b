package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherspace/config"
	"gatherspace/layout"
	"gatherspace/server"
)

// gatherspace 入口：启动 HTTP + WebSocket 服务，提供共享在线空间
func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := server.InitLogger(server.LogOptions{
		FilePath: cfg.LogFile,
		Level:    cfg.LogLevel,
		Stdout:   cfg.LogStdout,
	}); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	space := layout.Default()
	if cfg.LayoutFile != "" {
		if space, err = layout.Load(cfg.LayoutFile); err != nil {
			server.Log.Fatalf("layout: %v", err)
		}
	}
	server.Log.Infof("layout %q loaded: %d obstacles, %d areas", space.Name, len(space.Obstacles), len(space.InteractableAreas))

	metrics := &server.Metrics{}
	registry := server.NewRegistry(metrics)
	s := &server.Server{
		Registry:      registry,
		Metrics:       metrics,
		Layout:        space,
		ValidateMoves: cfg.ValidateMoves,
	}
	srv := &http.Server{Addr: cfg.Addr, Handler: s.Routes(cfg.StaticDir)}

	go func() {
		server.Log.Infof("gatherspace listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnf("shutdown: %v", err)
	}
	// 被接管的 WebSocket 连接不受 http.Server 管理，需单独关闭
	registry.Close()
}
