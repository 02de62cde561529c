package poster

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMissingCredentials не хватает ключей для соцсети, ловится при старте
var ErrMissingCredentials = errors.New("missing social network credentials")

type Kind int

const (
	// KindRateLimited лимит соцсети исчерпан, пробуем в следующий запуск
	KindRateLimited Kind = iota + 1
	// KindClient ошибка в запросе, повтор не поможет
	KindClient
	// KindServer сбой на стороне соцсети или сети, можно повторить
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindClient:
		return "client error"
	case KindServer:
		return "server error"
	default:
		return "unknown"
	}
}

type PostError struct {
	Kind       Kind
	StatusCode int
	// Через сколько лимит сбросится, если соцсеть об этом сказала
	RetryAfter time.Duration
	Err        error
}

func (e *PostError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("post failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("post failed (%s): %v", e.Kind, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// classify раскладывает http статус по типам ошибок
func classify(status int, err error) *PostError {
	kind := KindServer

	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindClient
	}

	return &PostError{Kind: kind, StatusCode: status, Err: err}
}

func IsRateLimited(err error) bool {
	var postErr *PostError
	return errors.As(err, &postErr) && postErr.Kind == KindRateLimited
}

// IsRetryable true для ошибок сервера и всего, что не является PostError (сеть, таймауты)
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var postErr *PostError
	if errors.As(err, &postErr) {
		return postErr.Kind == KindServer
	}

	return true
}
