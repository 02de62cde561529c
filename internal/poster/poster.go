// Package poster holds the social network collaborators the posting job talks to.
// Every implementation exposes a single capability: post a short text and get its id back.
package poster

import "context"

type Poster interface {
	Post(ctx context.Context, text string) (string, error)
}
