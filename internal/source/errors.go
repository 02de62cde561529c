package source

import (
	"errors"
	"fmt"
)

var ErrUnknownSource = errors.New("unknown source")

// FetchError ошибка сети или парсинга для одного источника
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	}

	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
