package enrich

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentiment(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        model.Sentiment
	}{
		{"bullish cue", "Bitcoin surges to new high", "", model.SentimentBullish},
		{"case insensitive", "BULL run continues", "", model.SentimentBullish},
		{"bearish wins", "Market crash deepens", "ETF decision faces delay", model.SentimentBearish},
		{"tie is neutral", "Exchange crash wipes out gains", "", model.SentimentNeutral},
		{"no cues", "Weekly recap", "Nothing happened", model.SentimentNeutral},
		{"empty", "", "", model.SentimentNeutral},
		{"description counts", "Weekly recap", "Adoption and growth keep going", model.SentimentBullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment(tt.title, tt.description))
		})
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("Bitcoin ETF approval sparks rally", "Bitcoin rallies as ETF gets approval today")

	assert.Equal(t, []string{"bitcoin", "approval", "sparks", "rally", "rallies"}, got)
}

func TestKeywordsShortWordsIgnored(t *testing.T) {
	assert.Empty(t, Keywords("ETF up 5%", "big day"))
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{"canonical and synthesized", []string{"bitcoin", "approval", "sparks", "rally"}, []string{"#Bitcoin", "#Approval", "#Sparks", "#CryptoNews"}},
		{"trailing tag not duplicated", []string{"cryptonews", "bitcoin"}, []string{"#Bitcoin", "#CryptoNews"}},
		{"trailing tag stays last", []string{"news", "bitcoin", "etf", "rally"}, []string{"#News", "#Bitcoin", "#Etf", "#CryptoNews"}},
		{"deduplicated", []string{"ether", "ethereum"}, []string{"#Ethereum", "#CryptoNews"}},
		{"whitespace stripped", []string{"layer two"}, []string{"#Layertwo", "#CryptoNews"}},
		{"empty", nil, []string{"#CryptoNews"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hashtags(tt.keywords)

			assert.Equal(t, tt.want, got)
			assert.Contains(t, got, TrailingHashtag)
			assert.LessOrEqual(t, len(got), 4)
		})
	}
}

func TestPostText(t *testing.T) {
	got := PostText("Bitcoin hits $100K", "https://example.com/a", []string{"#Bitcoin", "#CryptoNews"})

	assert.Equal(t, "Bitcoin hits $100K\n\nhttps://example.com/a\n\n#Bitcoin #CryptoNews", got)
}

func TestPostTextTooLong(t *testing.T) {
	title := strings.Repeat("a", 300)

	got := PostText(title, "https://example.com/"+strings.Repeat("b", 40), []string{"#Bitcoin", "#CryptoNews"})

	assert.Equal(t, 253, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, Ellipsis))
}

func TestFitPost(t *testing.T) {
	short := strings.Repeat("x", MaxPostLength)
	assert.Equal(t, short, FitPost(short))

	long := strings.Repeat("я", MaxPostLength+1)
	got := FitPost(long)
	require.True(t, utf8.ValidString(got))
	assert.Equal(t, 253, utf8.RuneCountInString(got))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
}

func TestApply(t *testing.T) {
	article := Apply(model.Article{
		Title:       "Bitcoin surges past resistance",
		Description: "Traders cheer",
		URL:         "https://example.com/btc",
	})

	assert.Equal(t, model.SentimentBullish, article.Sentiment)
	assert.Equal(t, RelevanceScore, article.RelevanceScore)
	assert.Equal(t, []string{"bitcoin", "surges", "past", "resistance", "traders"}, article.Keywords)
	assert.Equal(t, []string{"#Bitcoin", "#Surges", "#Past", "#CryptoNews"}, article.Hashtags)
	assert.Contains(t, article.PostText, "https://example.com/btc")
}
