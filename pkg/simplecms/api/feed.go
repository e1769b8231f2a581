package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.uber.org/zap"
)

// FeedSize is the number of articles in the Atom feed.
const FeedSize = 20

// FeedHandler renders published articles as an Atom feed
type FeedHandler struct {
	articles simplecms.Lifecycle
	title    string
	baseURL  string
	logger   *zap.Logger
}

// NewFeedHandler creates a feed handler. An empty baseURL is derived from
// each request's Host.
func NewFeedHandler(articles simplecms.Lifecycle, title, baseURL string, logger *zap.Logger) *FeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Simple CMS"
	}
	return &FeedHandler{
		articles: articles,
		title:    title,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

func (h *FeedHandler) base(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// ServeHTTP writes the newest published articles as Atom
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, err := h.articles.ListPublished(r.Context(), 1, FeedSize)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	base := h.base(r)
	feed := &feeds.Feed{
		Title: h.title,
		Link:  &feeds.Link{Href: base + "/"},
		Id:    base + "/",
	}

	for _, item := range page.Items {
		link := base + "/articles/" + item.Slug
		published := item.CreatedAt
		if item.PublishAt != nil {
			published = *item.PublishAt
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       item.Title,
			Link:        &feeds.Link{Href: link},
			Description: item.ShortText,
			Created:     published,
			Updated:     item.UpdatedAt,
		})
		if item.UpdatedAt.After(feed.Updated) {
			feed.Updated = item.UpdatedAt
		}
	}
	if feed.Updated.IsZero() {
		feed.Updated = time.Now().UTC()
	}

	atom, err := feed.ToAtom()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(atom)); err != nil {
		h.logger.Warn("write feed", zap.Error(err))
	}
}
