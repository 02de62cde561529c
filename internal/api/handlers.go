package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/cache"
	"github.com/kovalyov-valentin/cryptoflow/internal/fetcher"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/kovalyov-valentin/cryptoflow/internal/notifier"
	"github.com/kovalyov-valentin/cryptoflow/internal/poster"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type articlesResponse struct {
	Articles []model.Article `json:"articles"`
}

type postNewsRequest struct {
	Language string `json:"language"`
}

type postNewsResponse struct {
	notifier.Result
	Error string `json:"error,omitempty"`
}

type scheduleRequest struct {
	ArticleID    string    `json:"articleId"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

type statsResponse struct {
	Articles fetcher.Stats       `json:"articles"`
	Cache    []cache.SourceStats `json:"cache"`
}

var validSentiments = []string{"", "all", string(model.SentimentBullish), string(model.SentimentBearish), string(model.SentimentNeutral)}

// GET /fetch-news?sources=a,b&refresh=true&sentiment=bullish&q=etf
func (s *Server) handleFetchNews(c echo.Context) error {
	flt := fetcher.Filter{
		Sentiment: strings.ToLower(c.QueryParam("sentiment")),
		Query:     c.QueryParam("q"),
	}

	if !lo.Contains(validSentiments, flt.Sentiment) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown sentiment " + flt.Sentiment})
	}

	refresh := false
	if raw := c.QueryParam("refresh"); raw != "" {
		var err error
		if refresh, err = strconv.ParseBool(raw); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "refresh must be a boolean"})
		}
	}

	articles, err := s.articles.FetchAll(c.Request().Context(), splitList(c.QueryParam("sources")), !refresh)
	if err != nil {
		log.Printf("[ERROR] fetch news: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	articles = flt.Apply(articles)
	if articles == nil {
		articles = []model.Article{}
	}

	return c.JSON(http.StatusOK, articlesResponse{Articles: articles})
}

// POST /post-news {"language": "fr"}
func (s *Server) handlePostNews(c echo.Context) error {
	if s.credentialsErr != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Missing social network credentials",
			Details: s.credentialsErr.Error(),
		})
	}

	var req postNewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	result, err := s.publisher.Post(c.Request().Context(), req.Language)
	if err != nil {
		switch {
		case errors.Is(err, poster.ErrMissingCredentials):
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Error:   "Missing social network credentials",
				Details: err.Error(),
			})
		case poster.IsRetryable(err):
			log.Printf("[ERROR] post news: %v", err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		default:
			// Повтор не поможет, отдаем 200 чтобы планировщик не долбил нас ретраями
			log.Printf("[WARN] post news rejected: %v", err)
			return c.JSON(http.StatusOK, postNewsResponse{
				Result: notifier.Result{Message: "post rejected by social network"},
				Error:  err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, postNewsResponse{Result: result})
}

func (s *Server) handleStats(c echo.Context) error {
	articles, err := s.articles.FetchAll(c.Request().Context(), nil, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, statsResponse{
		Articles: fetcher.Summarize(articles),
		Cache:    s.cache.Stats(),
	})
}

func (s *Server) handleSources(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]model.Source{"sources": s.sources.All()})
}

// POST /schedule {"articleId": "...", "scheduledFor": "2024-02-01T12:00:00Z"}
func (s *Server) handleSchedule(c echo.Context) error {
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if req.ArticleID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "articleId is required"})
	}

	post, err := s.publisher.Schedule(c.Request().Context(), req.ArticleID, req.ScheduledFor)
	if err != nil {
		if errors.Is(err, notifier.ErrArticleNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}

		log.Printf("[ERROR] schedule post: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, post)
}

func (s *Server) handleScheduled(c echo.Context) error {
	posts, err := s.publisher.Scheduled(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	if posts == nil {
		posts = []model.ScheduledPost{}
	}

	return c.JSON(http.StatusOK, map[string][]model.ScheduledPost{"posts": posts})
}

func splitList(raw string) []string {
	ids := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})

	return lo.Filter(ids, func(id string, _ int) bool {
		return id != ""
	})
}
