package web

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/guildgate-org/backend/internal/middleware"
)

// Web owns the HTTP plane: the OAuth callback, the interactions webhook,
// health and metrics.
type Web struct {
	logger *zap.Logger
	host   string
	port   string
	server *http.Server
}

func NewWeb(
	logger *zap.Logger,
	host string,
	port string,
	interactionsPublicKey ed25519.PublicKey,
	callbackHandler *CallbackHandler,
	interactionsHandler *InteractionsHandler,
) (*Web, error) {
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(5, 600)
	signatureMiddleware := middleware.NewSignatureMiddleware(interactionsPublicKey)

	router := mux.NewRouter()
	router.Handle("/callback",
		rateLimitMiddleware(http.HandlerFunc(callbackHandler.Handle)),
	).Methods(http.MethodGet)
	router.Handle("/interactions",
		signatureMiddleware(http.HandlerFunc(interactionsHandler.Handle)),
	).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", host, port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Web{
		logger: logger,
		host:   host,
		port:   port,
		server: server,
	}, nil
}

func (this *Web) Start() error {
	go func() {
		this.logger.Info("HTTP server started", zap.String("addr", this.server.Addr))
		err := this.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			this.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (this *Web) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := this.server.Shutdown(ctx); err != nil {
		return err
	}
	this.logger.Info("HTTP server stopped gracefully")
	return nil
}
