// Package retroapp harvests TableOfContents documents from the Huygens
// retroapp web service. Each configured item maps to one XML document,
// which is persisted as-is and later flattened into letter entries for
// tabular output.
package retroapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HoekR/emlo-analysis/lib/ratelimit"
	"github.com/HoekR/emlo-analysis/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/retroapp")

// DefaultBaseUrl is the Heinsius correspondence service of the public
// retroapp instance.
const DefaultBaseUrl = "http://resources.huygens.knaw.nl/retroapp/service_heinsius"

// ParseItemList reduces a raw item listing, one "ING Book Service
// NN_PPP" entry per line, to the bare item tokens the service URLs use.
func ParseItemList(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "ING Book Service")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

type RetrievalError struct {
	Url    string
	Status int
}

func (e RetrievalError) Error() string {
	return fmt.Sprintf("error retrieving %s: status %d", e.Url, e.Status)
}

type Client struct {
	BaseUrl string
	Http    *resty.Client
	Limiter ratelimit.Limiter
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to one fetch per 3s
	Limiter ratelimit.Limiter
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = &ratelimit.Interval{Every: time.Second * 3}
	}

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "scrapers/retroapp/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		Limiter: limiter,
	}
}

// FetchTOC retrieves the TableOfContents XML for one item.
func (c *Client) FetchTOC(ctx context.Context, item string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:FetchTOC")
	defer span.End()
	span.SetAttributes(attribute.String("item", item))

	link := fmt.Sprintf("%s/%s/TableOfContents", c.BaseUrl, item)
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)

	// the politeness delay applies after every fetch, however the
	// fetch went, same as the results-page client
	if waitErr := c.Limiter.Wait(ctx); waitErr != nil {
		return nil, waitErr
	}

	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch table of contents")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "non-success status")
		return nil, RetrievalError{Url: link, Status: res.StatusCode()}
	}
	return res.Body(), nil
}

// DownloadAll persists the TableOfContents of every item as
// `<item>.xml` under dir.
func (c *Client) DownloadAll(ctx context.Context, items []string, dir string) error {
	ctx, span := tracer.Start(ctx, "client:DownloadAll")
	defer span.End()

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	for _, item := range items {
		body, err := c.FetchTOC(ctx, item)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch item")
			return err
		}

		path := filepath.Join(dir, item+".xml")
		err = os.WriteFile(path, body, 0o644)
		if err != nil {
			span.SetStatus(codes.Error, "failed to persist item")
			return err
		}
		slog.InfoContext(ctx, "downloaded table of contents", "item", item, "path", path)
	}
	return nil
}
