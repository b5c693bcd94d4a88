package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/hermes/internal/handlers/v1/batch"
	"github.com/carson-networks/hermes/internal/handlers/v1/enrich"
	"github.com/carson-networks/hermes/internal/handlers/v1/score"
	"github.com/carson-networks/hermes/internal/handlers/v1/status"
	"github.com/carson-networks/hermes/internal/logging"
	"github.com/carson-networks/hermes/internal/operator"
	"github.com/carson-networks/hermes/internal/service"
)

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Service  *service.Service
	Tables   service.TableSource
	Operator *operator.OperatorDelegator
}

// Handler builds the router serving every endpoint.
func (r *Rest) Handler() http.Handler {
	mux := http.NewServeMux()

	statusHandler := status.NewHandler(r.Tables)
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	api := humago.New(mux, huma.DefaultConfig("Hermes API", "1.0"))
	api.UseMiddleware(logging.Middleware(r.Logger))

	enrich.NewEnrichHandler(r.Service.Pipeline).Register(api)
	score.NewScoreHandler(r.Service.Pipeline).Register(api)
	batch.NewBatchHandler(r.Operator).Register(api)

	return mux
}

// Serve listens until ctx is cancelled, then shuts the server down.
func (r *Rest) Serve(ctx context.Context) {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Handler(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.Logger.WithError(err).Error("HttpServer.Serve.shutdown error")
		}
	}()

	r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
