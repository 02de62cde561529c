package enrich

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// TrailingHashtag добавляется к каждому набору хэштегов
const TrailingHashtag = "#CryptoNews"

const maxKeywordHashtags = 3

var canonicalHashtags = map[string]string{
	"bitcoin":        "#Bitcoin",
	"ethereum":       "#Ethereum",
	"ether":          "#Ethereum",
	"crypto":         "#Crypto",
	"cryptocurrency": "#Crypto",
	"blockchain":     "#Blockchain",
	"defi":           "#DeFi",
	"solana":         "#Solana",
	"ripple":         "#XRP",
	"binance":        "#Binance",
	"coinbase":       "#Coinbase",
	"stablecoin":     "#Stablecoins",
	"stablecoins":    "#Stablecoins",
	"altcoin":        "#Altcoins",
	"altcoins":       "#Altcoins",
	"mining":         "#BitcoinMining",
}

// Hashtags превращает ключевые слова в хэштеги, берет первые 3 и всегда добавляет TrailingHashtag.
func Hashtags(keywords []string) []string {
	tags := lo.Uniq(lo.Filter(lo.Map(keywords, func(keyword string, _ int) string {
		return hashtagFor(keyword)
	}), func(tag string, _ int) bool {
		// TrailingHashtag всегда последний и не занимает место ключевого слова
		return tag != "" && !strings.EqualFold(tag, TrailingHashtag)
	}))

	if len(tags) > maxKeywordHashtags {
		tags = tags[:maxKeywordHashtags]
	}

	return lo.Uniq(append(tags, TrailingHashtag))
}

func hashtagFor(keyword string) string {
	if tag, ok := canonicalHashtags[strings.ToLower(keyword)]; ok {
		return tag
	}

	stripped := strings.Join(strings.Fields(keyword), "")
	if stripped == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(stripped)

	return "#" + string(unicode.ToUpper(r)) + stripped[size:]
}
