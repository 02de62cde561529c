package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func (s *Server) routes(postLimiter *rate.Limiter) {

	s.echo.GET("/fetch-news", s.handleFetchNews)
	s.echo.GET("/stats", s.handleStats)
	s.echo.GET("/sources", s.handleSources)
	s.echo.GET("/scheduled", s.handleScheduled)

	s.echo.POST("/post-news", s.handlePostNews, rateLimit(postLimiter, skipLimited))
	s.echo.POST("/schedule", s.handleSchedule, rateLimit(postLimiter, tooManyRequests))

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
