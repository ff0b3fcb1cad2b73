package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sngm3741/webform-relay/internal/config"
	fronthttp "github.com/sngm3741/webform-relay/internal/interfaces/http/front"
	"github.com/sngm3741/webform-relay/internal/relay"
)

// Server は Web フロントの HTTP ライフサイクルを管理し、リレー送信側を front ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger  *log.Logger
	addr    string
	webRoot string
	sender  relay.Sender
}

// New は cfg から Web フロントを組み立てる。sender が投稿をリレーへ運ぶ。
func New(cfg config.Config, sender relay.Sender) *Server {
	return &Server{
		logger:  cfg.ServerLog,
		addr:    cfg.HTTPAddr,
		webRoot: cfg.WebRoot,
		sender:  sender,
	}
}

// Router はミドルウェアとルーティングを組み立てる。
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	frontHandler := fronthttp.NewHandler(fronthttp.Config{
		Logger:  s.logger,
		WebRoot: s.webRoot,
		Sender:  s.sender,
	})
	frontHandler.Register(router)
	return router
}

// Run は ctx がキャンセルされるまで HTTP を提供し、その後グレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP Server running on %s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(ctx, httpServer, errChan, s.logger)
}

// waitForShutdown は ListenAndServe と ctx を監視し、キャンセル時は時間制限付きで停止処理を行う。
func waitForShutdown(ctx context.Context, httpServer *http.Server, errChan <-chan error, logger *log.Logger) error {
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Printf("shutting down HTTP server: %v", context.Cause(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("error during HTTP server shutdown: %v", err)
			return err
		}
		return nil
	}
}
