package retroapp

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/HoekR/emlo-analysis/lib/ratelimit"
	"github.com/HoekR/emlo-analysis/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const tocFixture = `<?xml version="1.0" encoding="UTF-8"?>
<toc>
	<item>
		<n>1</n>
		<page>3</page>
		<title>
			<from>N. Heinsius</from>
			<to>J. F. Gronovius</to>
			<date><d>12</d><m>3</m><y>1648</y></date>
		</title>
	</item>
	<item>
		<n>2</n>
		<page>7</page>
		<title>
			<from>J. F. Gronovius</from>
			<to>N. Heinsius</to>
			<date><d>2</d><m>4</m><y>1648</y></date>
		</title>
	</item>
</toc>`

func TestParseItemList(t *testing.T) {
	raw := "\tING Book Service 01_158\nING Book Service 02_163\n\n"
	require.Equal(t, []string{"01_158", "02_163"}, ParseItemList(raw))
}

func TestParseTOC(t *testing.T) {
	entries, err := ParseTOC([]byte(tocFixture))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, Entry{
		N:    "1",
		Page: "3",
		From: "N. Heinsius",
		To:   "J. F. Gronovius",
		D:    "12",
		M:    "3",
		Y:    "1648",
	}, entries[0])
}

func TestParseTOCMalformed(t *testing.T) {
	_, err := ParseTOC([]byte("<toc><item>"))
	require.Error(t, err)
}

func TestDownloadAndFlatten(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/retroapp")
	defer cleanup()

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(tocFixture))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Limiter: ratelimit.None{},
	})

	dir := t.TempDir()
	err := client.DownloadAll(context.Background(), []string{"01_158", "02_163"}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{"/01_158/TableOfContents", "/02_163/TableOfContents"}, paths)

	_, err = os.Stat(filepath.Join(dir, "01_158.xml"))
	require.NoError(t, err)

	entries, err := FlattenDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 4)
}

// records its invocations so tests can check when the throttle fires
type recordingLimiter struct {
	events *[]string
}

func (l recordingLimiter) Wait(ctx context.Context) error {
	*l.events = append(*l.events, "wait")
	return ctx.Err()
}

func TestFetchTOCThrottlesAfterFetch(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/retroapp")
	defer cleanup()

	var events []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		events = append(events, "fetch")
		w.Write([]byte(tocFixture))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Limiter: recordingLimiter{events: &events},
	})

	_, err := client.FetchTOC(context.Background(), "01_158")
	require.NoError(t, err)
	require.Equal(t, []string{"fetch", "wait"}, events)
}

func TestFetchTOCRetrievalError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/retroapp")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Limiter: ratelimit.None{},
	})

	_, err := client.FetchTOC(context.Background(), "99_999")
	var retrievalErr RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	require.Equal(t, http.StatusNotFound, retrievalErr.Status)
}

func TestWriteCSV(t *testing.T) {
	entries, err := ParseTOC([]byte(tocFixture))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteCSV(&buf, entries)
	require.NoError(t, err)

	want := "n,page,from,to,d,m,y\n" +
		"1,3,N. Heinsius,J. F. Gronovius,12,3,1648\n" +
		"2,7,J. F. Gronovius,N. Heinsius,2,4,1648\n"
	require.Equal(t, want, buf.String())
}
