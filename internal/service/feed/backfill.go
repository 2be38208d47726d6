package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	drepo "github.com/Dahilon/Atlas/internal/domain/repository"
	xhttp "github.com/Dahilon/Atlas/pkg/http"
)

// Backfill fetches recent articles over the provider's REST API so a fresh
// deployment has history to score before the live stream catches up.
type Backfill struct {
	apiKey   string
	baseURL  string
	channels []string
	client   *xhttp.Client
}

// NewBackfill creates a REST backfill fetcher.
func NewBackfill(apiKey, baseURL string, channels []string) *Backfill {
	return &Backfill{
		apiKey:   apiKey,
		baseURL:  baseURL,
		channels: channels,
		client:   xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
	}
}

type backfillResponse struct {
	Articles []feedArticle `json:"articles"`
}

// FetchRecent pulls articles published since the given time for every
// configured channel.
func (b *Backfill) FetchRecent(ctx context.Context, since time.Time) ([]*models.Article, error) {
	var out []*models.Article
	for _, ch := range b.channels {
		var resp backfillResponse
		err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    b.baseURL + "/articles",
			QueryParams: map[string][]string{
				"channel": {ch},
				"from":    {since.UTC().Format(time.RFC3339)},
				"token":   {b.apiKey},
			},
		}, &resp)
		if err != nil {
			return out, fmt.Errorf("backfill %s: %w", ch, err)
		}
		for _, d := range resp.Articles {
			out = append(out, d.toModel())
		}
	}
	return out, nil
}

var _ drepo.ArticleFetcher = (*Backfill)(nil)
