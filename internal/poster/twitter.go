package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const tweetsEndpoint = "https://api.twitter.com/2/tweets"

type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Validate перечисляет все отсутствующие значения сразу
func (c TwitterCredentials) Validate() error {
	var missing []string

	for name, value := range map[string]string{
		"api key":       c.APIKey,
		"api secret":    c.APISecret,
		"access token":  c.AccessToken,
		"access secret": c.AccessSecret,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: twitter %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	return nil
}

// Twitter постит твиты через API v2 с подписью OAuth1 user context
type Twitter struct {
	client   *http.Client
	endpoint string
	now      func() time.Time
}

func NewTwitter(creds TwitterCredentials) (*Twitter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	return newTwitter(config.Client(oauth1.NoContext, token), tweetsEndpoint), nil
}

func newTwitter(client *http.Client, endpoint string) *Twitter {
	return &Twitter{client: client, endpoint: endpoint, now: time.Now}
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Post возвращает id твита или *PostError
func (t *Twitter) Post(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &PostError{Kind: KindServer, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &PostError{Kind: KindServer, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		postErr := classify(resp.StatusCode, fmt.Errorf("twitter: %s", strings.TrimSpace(string(body))))
		if postErr.Kind == KindRateLimited {
			postErr.RetryAfter = t.retryAfter(resp.Header)
		}
		return "", postErr
	}

	var tweet tweetResponse
	if err := json.Unmarshal(body, &tweet); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}

	if tweet.Data.ID == "" {
		return "", errors.New("twitter: empty tweet id in response")
	}

	return tweet.Data.ID, nil
}

// В заголовке x-rate-limit-reset unix время сброса лимита
func (t *Twitter) retryAfter(h http.Header) time.Duration {
	reset, err := strconv.ParseInt(h.Get("x-rate-limit-reset"), 10, 64)
	if err != nil {
		return 0
	}

	if d := time.Unix(reset, 0).Sub(t.now()); d > 0 {
		return d
	}

	return 0
}
