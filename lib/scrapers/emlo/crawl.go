package emlo

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrStalled is returned when a fetched page contributes no new records
// while the accumulated count is still below the reported total. The
// reported-total field is not trusted to be self-consistent with page
// contents, and without this check such a crawl would never terminate.
var ErrStalled = fmt.Errorf("crawl stalled: results page added no new records")

type Crawler struct {
	client   *Client
	maxPages int
}

type CrawlerOptions struct {
	Client *Client
	// MaxPages caps the number of page fetches in one crawl,
	// 0 means no ceiling
	MaxPages int
}

func NewCrawler(opts CrawlerOptions) Crawler {
	client := opts.Client
	if client == nil {
		client = NewClient(ClientOptions{})
	}
	return Crawler{
		client:   client,
		maxPages: opts.MaxPages,
	}
}

// Crawl walks every results page of a collection and returns the full
// ordered sequence of extracted docs. The next page's start offset is
// always the accumulated count, and the crawl is done once that count
// reaches the reported total. Any retrieval, parse or schema failure
// aborts the attempt, nothing is salvaged.
func (c Crawler) Crawl(ctx context.Context, col Collection) ([]Doc, error) {
	ctx, span := tracer.Start(ctx, "crawler:Crawl")
	defer span.End()
	span.SetAttributes(attribute.String("collection", col.Name))

	if err := col.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid collection")
		return nil, err
	}

	slog.InfoContext(ctx, "crawling collection", "collection", col.Name)

	var docs []Doc
	for pages := 0; ; pages++ {
		if c.maxPages > 0 && pages >= c.maxPages {
			err := fmt.Errorf("crawl exceeded the page ceiling of %d", c.maxPages)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		start := len(docs)
		slog.DebugContext(ctx, "retrieving results", "collection", col.Name, "start", start)

		pageDoc, err := c.client.GetResultsPage(ctx, col, start)
		if err != nil {
			span.SetStatus(codes.Error, "failed to get results page")
			return nil, err
		}
		page, err := ParseResultsPage(pageDoc, col.Name)
		if err != nil {
			span.SetStatus(codes.Error, "failed to parse results page")
			return nil, err
		}

		docs = append(docs, page.Docs...)
		slog.InfoContext(
			ctx, "retrieved results",
			"collection", col.Name,
			"retrieved", len(docs),
			"total", page.Total,
		)

		if len(docs) >= page.Total {
			break
		}
		if len(page.Docs) == 0 {
			span.SetStatus(codes.Error, ErrStalled.Error())
			return nil, ErrStalled
		}
	}

	return docs, nil
}
