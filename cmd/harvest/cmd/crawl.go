package cmd

import (
	"fmt"
	"os"

	"github.com/HoekR/emlo-analysis/lib/docstore"
	"github.com/HoekR/emlo-analysis/lib/registry"
	"github.com/HoekR/emlo-analysis/lib/scrapers/emlo"
	"github.com/HoekR/emlo-analysis/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var crawlDbPath string

func init() {
	crawlCmd.Flags().StringVar(
		&crawlDbPath, "db", "",
		"sqlite database to store the crawled docs in",
	)
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <collection>...",
	Short: "Crawls all results pages of the named collections.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(config.Crawl.Collections) == 0 {
			fmt.Fprintln(os.Stderr, "no collections configured in harvest.json5")
			os.Exit(1)
		}
		reg := registry.Registry{Collections: config.Crawl.Collections}

		crawler := emlo.NewCrawler(emlo.CrawlerOptions{
			Client: emlo.NewClient(emlo.ClientOptions{
				BaseUrl: config.Crawl.BaseUrl,
				Limiter: crawlLimiter(),
			}),
			MaxPages: config.Crawl.MaxPages,
		})

		var store docstore.Store
		if crawlDbPath != "" {
			var err error
			store, err = docstore.Open(crawlDbPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			defer store.Close()
		}

		ctx := serviceutil.SignalContext()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Collection", "Docs"})

		for _, arg := range args {
			col, err := reg.Resolve(arg)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}

			docs, err := crawler.Crawl(ctx, col)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}

			if crawlDbPath != "" {
				err = store.Push(ctx, col.Name, docs)
				if err != nil {
					fmt.Fprintln(os.Stderr, err.Error())
					os.Exit(1)
				}
			}

			t.AppendRow(table.Row{col.Name, len(docs)})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
