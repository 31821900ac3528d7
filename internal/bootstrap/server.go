package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skyreserve/booking-service/api"
	"github.com/skyreserve/booking-service/config"
	"github.com/skyreserve/booking-service/internal/service/booking"
)

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, bookingSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RateLimit(cfg.HTTP.RatePerSecond, cfg.HTTP.RateBurst))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := api.NewBookingHandler(bookingSvc)
	handler.Register(router.Group("/api/v1/bookings"))

	return router
}
