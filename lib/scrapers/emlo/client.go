package emlo

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/HoekR/emlo-analysis/lib/ratelimit"
	"github.com/HoekR/emlo-analysis/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// DefaultBaseUrl is the advanced search endpoint of the public EMLO
// instance.
const DefaultBaseUrl = "http://emlo.bodleian.ox.ac.uk/forms/advanced"

type Client struct {
	BaseUrl string
	Http    *resty.Client
	Limiter ratelimit.Limiter
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to a 3s + up to 10s jitter wait after every fetch
	Limiter ratelimit.Limiter
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.FixedJitter{
			Min:    time.Second * 3,
			Jitter: time.Second * 10,
		}
	}

	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "scrapers/emlo/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		Limiter: limiter,
	}
}

// ResultsPageUrl constructs the results page url for a collection and a
// given result start offset. The search token is already URL-safe, so it
// is substituted verbatim rather than re-encoded.
func (c *Client) ResultsPageUrl(col Collection, start int) string {
	return fmt.Sprintf("%s?col_cat=%s&start=%d", c.BaseUrl, col.SearchName, start)
}

// GetResultsPage fetches one results page and parses it into a document
// tree. The politeness delay is applied after every fetch, regardless of
// how the fetch went.
func (c *Client) GetResultsPage(ctx context.Context, col Collection, start int) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:GetResultsPage")
	defer span.End()

	if err := col.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid collection")
		return nil, err
	}

	link := c.ResultsPageUrl(col, start)
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)

	if waitErr := c.Limiter.Wait(ctx); waitErr != nil {
		return nil, waitErr
	}

	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch results page")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "non-success status")
		return nil, RetrievalError{Url: link, Status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, ParseError{Detail: "malformed html", Cause: err}
	}
	return doc, nil
}
