package agent

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	stattop "github.com/jondoveston/stattop/internal"
)

const DEFAULT_LISTEN_ADDR = ":8082"

// NewServer wires the agent routes onto a fresh echo instance. /api/stats samples
// through stats alone, so scrapes of /metrics and visits to / do not change the
// cpu interval the dashboard sees.
func NewServer(stats, pages Sampler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	registry := prometheus.NewRegistry()
	registry.MustRegister(newStatsCollector(pages))

	h := &handlers{statsSampler: stats, pages: pages}
	e.GET("/", h.index)
	e.GET("/api/stats", h.stats)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	return e
}

// Serve runs the agent on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, stats, pages Sampler) error {
	e := NewServer(stats, pages)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("stattop agent listening on %s", addr)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down stattop agent")
		return e.Shutdown(shutdownCtx)
	}
}

type handlers struct {
	statsSampler Sampler
	pages Sampler
}

func (h *handlers) stats(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Access-Control-Allow-Origin", "*")

	stats, err := h.statsSampler.Sample(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Error sampling host stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	body, err := stattop.MarshalStats(stats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *handlers) index(c echo.Context) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	stats, sampleErr := h.pages.Sample(c.Request().Context())

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	resp.WriteHeader(http.StatusOK)
	return indexPage(hostname, stats, sampleErr).Render(c.Request().Context(), resp)
}
