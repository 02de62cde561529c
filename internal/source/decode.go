package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// decodeFeed сначала пробует gofeed (RSS, Atom, JSON Feed),
// если он не справился, то более терпимый к кривой разметке SlyMarbo/rss.
func decodeFeed(data []byte) ([]model.Item, error) {
	items, err := decodeGofeed(data)
	if err == nil {
		return items, nil
	}

	fallbackItems, fallbackErr := decodeRSS(data)
	if fallbackErr == nil {
		return fallbackItems, nil
	}

	return nil, fmt.Errorf("parse feed: %w (fallback: %v)", err, fallbackErr)
}

// Парсер gofeed держит состояние, поэтому на каждый вызов создаем новый
func decodeGofeed(data []byte) ([]model.Item, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return lo.Map(feed.Items, func(entry *gofeed.Item, _ int) model.Item {
		item := model.Item{
			Title:      strings.TrimSpace(entry.Title),
			Link:       strings.TrimSpace(entry.Link),
			Snippet:    entry.Description,
			Content:    entry.Content,
			Categories: entry.Categories,
		}

		if item.Link == "" && len(entry.Links) > 0 {
			item.Link = entry.Links[0]
		}

		if entry.PublishedParsed != nil {
			item.Date = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Date = *entry.UpdatedParsed
		}

		if entry.Image != nil {
			item.ImageURL = entry.Image.URL
		} else if enclosure, ok := lo.Find(entry.Enclosures, func(e *gofeed.Enclosure) bool {
			return strings.HasPrefix(e.Type, "image/")
		}); ok {
			item.ImageURL = enclosure.URL
		}

		return item
	}), nil
}

func decodeRSS(data []byte) ([]model.Item, error) {
	feed, err := rss.Parse(data)
	if err != nil {
		return nil, err
	}

	var items []model.Item
	for _, entry := range feed.Items {
		items = append(items, model.Item{
			Title:      strings.TrimSpace(entry.Title),
			Link:       strings.TrimSpace(entry.Link),
			Date:       entry.Date,
			Snippet:    entry.Summary,
			Content:    entry.Content,
			Categories: entry.Categories,
		})
	}

	return items, nil
}
