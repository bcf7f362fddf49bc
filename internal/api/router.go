package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the complaint endpoints, health check and metrics.
// metrics and gatherer may be nil.
func NewRouter(h *Handler, metrics *HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog())
	if metrics != nil {
		r.Use(metrics.Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	complaints := r.Group("/complaints")
	complaints.POST("", h.CreateComplaint)
	complaints.GET("", h.ListComplaints)
	complaints.GET("/authors", h.ListAuthors)
	complaints.GET("/markers", h.ListMarkers)
	complaints.PATCH("/status", h.UpdateStatus)

	return r
}
