package cmd

import (
	"fmt"
	"os"

	"github.com/HoekR/emlo-analysis/lib/scrapers/retroapp"
	"github.com/HoekR/emlo-analysis/lib/serviceutil"

	"github.com/spf13/cobra"
)

var tocDir string
var tocCsvPath string
var tocListPath string

func init() {
	tocCmd.PersistentFlags().StringVar(
		&tocDir, "dir", "",
		"directory holding the downloaded TableOfContents files (overrides config)",
	)
	tocDownloadCmd.Flags().StringVar(
		&tocListPath, "list", "",
		"file holding a raw 'ING Book Service' item listing (overrides the configured items)",
	)
	tocFlattenCmd.Flags().StringVar(
		&tocCsvPath, "out", "heinbrieven.csv",
		"path of the flattened CSV file",
	)

	tocCmd.AddCommand(tocDownloadCmd)
	tocCmd.AddCommand(tocFlattenCmd)
	rootCmd.AddCommand(tocCmd)
}

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Harvests TableOfContents documents from the retroapp service.",
}

func resolveTocDir() string {
	if tocDir != "" {
		return tocDir
	}
	if config.Toc.Dir != "" {
		return config.Toc.Dir
	}
	return "toc"
}

var tocDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Downloads the TableOfContents of every configured item.",
	Run: func(cmd *cobra.Command, args []string) {
		items := config.Toc.Items
		if tocListPath != "" {
			raw, err := os.ReadFile(tocListPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			items = retroapp.ParseItemList(string(raw))
		}
		if len(items) == 0 {
			fmt.Fprintln(os.Stderr, "no toc items configured in harvest.json5")
			os.Exit(1)
		}

		client := retroapp.NewClient(retroapp.ClientOptions{
			BaseUrl: config.Toc.BaseUrl,
		})

		err := client.DownloadAll(serviceutil.SignalContext(), items, resolveTocDir())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	},
}

var tocFlattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Flattens the downloaded TableOfContents files into one CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := retroapp.FlattenDir(resolveTocDir())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		out, err := os.Create(tocCsvPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer out.Close()

		err = retroapp.WriteCSV(out, entries)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		fmt.Printf("wrote %d entries to %s\n", len(entries), tocCsvPath)
	},
}
