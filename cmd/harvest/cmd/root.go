package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/HoekR/emlo-analysis/lib/configutil"
	"github.com/HoekR/emlo-analysis/lib/ratelimit"
	"github.com/HoekR/emlo-analysis/lib/scrapers/emlo"
	"github.com/HoekR/emlo-analysis/lib/serviceutil"

	"github.com/spf13/cobra"
)

type CrawlConfig struct {
	BaseUrl        string            `json:"base_url"`
	MinWaitSeconds int               `json:"min_wait_seconds"`
	JitterSeconds  int               `json:"jitter_seconds"`
	MaxPages       int               `json:"max_pages"`
	Collections    []emlo.Collection `json:"collections"`
}

type TocConfig struct {
	BaseUrl string   `json:"base_url"`
	Items   []string `json:"items"`
	Dir     string   `json:"dir"`
}

type Config struct {
	Crawl CrawlConfig `json:"crawl"`
	Toc   TocConfig   `json:"toc"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "harvest crawls letter catalogs into structured records.",
}

func Execute() {
	var err error
	config, err = configutil.ReadConfig[Config]("harvest.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read harvest.json5", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func crawlLimiter() ratelimit.Limiter {
	minWait := config.Crawl.MinWaitSeconds
	jitter := config.Crawl.JitterSeconds
	if minWait == 0 && jitter == 0 {
		minWait, jitter = 3, 10
	}
	return ratelimit.FixedJitter{
		Min:    time.Duration(minWait) * time.Second,
		Jitter: time.Duration(jitter) * time.Second,
	}
}
