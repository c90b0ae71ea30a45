package emlo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/HoekR/emlo-analysis/lib/ratelimit"
	"github.com/HoekR/emlo-analysis/lib/telemetry"

	"github.com/stretchr/testify/require"
)

var testCollection = Collection{
	Name:       "Scaliger, Joseph Justus",
	SearchName: "Scaliger%2C+Joseph+Justus",
}

// serves pages of a fixed-size result set, honoring the start offset the
// way the real results endpoint does
func resultsServer(t *testing.T, total, pageSize int, requests *[]int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, err := strconv.Atoi(r.URL.Query().Get("start"))
		if err != nil {
			t.Errorf("bad start offset: %s", err)
		}
		*requests = append(*requests, start)

		var rows []testRow
		for n := start + 1; n <= total && len(rows) < pageSize; n++ {
			rows = append(rows, testDoc(n))
		}
		w.Write([]byte(resultsPage(total, rows)))
	}))
	t.Cleanup(server.Close)
	return server
}

func testCrawler(serverUrl string, maxPages int) Crawler {
	return NewCrawler(CrawlerOptions{
		Client: NewClient(ClientOptions{
			BaseUrl: serverUrl,
			Limiter: ratelimit.None{},
		}),
		MaxPages: maxPages,
	})
}

func TestCrawlSinglePage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	var requests []int
	server := resultsServer(t, 5, 10, &requests)

	docs, err := testCrawler(server.URL, 0).Crawl(context.Background(), testCollection)
	require.NoError(t, err)
	require.Len(t, docs, 5)
	require.Equal(t, []int{0}, requests)
}

func TestCrawlTwoPages(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	var requests []int
	server := resultsServer(t, 12, 10, &requests)

	docs, err := testCrawler(server.URL, 0).Crawl(context.Background(), testCollection)
	require.NoError(t, err)
	require.Len(t, docs, 12)
	require.Equal(t, []int{0, 10}, requests)

	for i, doc := range docs {
		require.Equal(t, i+1, doc.ResultNum)
		require.Equal(t, testCollection.Name, doc.Collection)
	}
}

func TestCrawlStallDetection(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	// reports 12 results but never serves any rows
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage(12, nil)))
	}))
	defer server.Close()

	_, err := testCrawler(server.URL, 0).Crawl(context.Background(), testCollection)
	require.ErrorIs(t, err, ErrStalled)
}

func TestCrawlPageCeiling(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	// serves the same full page over and over, the accumulated count
	// grows but never reaches the reported total
	var rows []testRow
	for n := 1; n <= 10; n++ {
		rows = append(rows, testDoc(n))
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage(1000, rows)))
	}))
	defer server.Close()

	_, err := testCrawler(server.URL, 3).Crawl(context.Background(), testCollection)
	require.Error(t, err)
	require.Contains(t, err.Error(), "page ceiling")
}

func TestCrawlRetrievalError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testCrawler(server.URL, 0).Crawl(context.Background(), testCollection)
	var retrievalErr RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	require.Equal(t, http.StatusBadGateway, retrievalErr.Status)
}

func TestCrawlSchemaErrorAborts(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	bad := testDoc(1)
	bad.num = "one"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage(1, []testRow{bad})))
	}))
	defer server.Close()

	_, err := testCrawler(server.URL, 0).Crawl(context.Background(), testCollection)
	var schemaErr SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestCrawlUnsetCollection(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/emlo")
	defer cleanup()

	_, err := testCrawler("http://invalid.example", 0).Crawl(context.Background(), Collection{})
	require.Error(t, err)
}

func TestResultsPageUrl(t *testing.T) {
	client := NewClient(ClientOptions{Limiter: ratelimit.None{}})
	require.Equal(
		t,
		"http://emlo.bodleian.ox.ac.uk/forms/advanced?col_cat=Scaliger%2C+Joseph+Justus&start=30",
		client.ResultsPageUrl(testCollection, 30),
	)
}
