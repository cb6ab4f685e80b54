package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/bookmeta/internal/adapter/static"
	"github.com/user/bookmeta/internal/entity"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract the book on a page and store the record",
	Long: `Extract opens the page in a headless browser, runs the extractor for its
site and stores the resulting record. With --static the page is fetched over
plain HTTP instead; with --html-file a saved copy of the page is read and the
URL only selects the extractor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		htmlFile, _ := cmd.Flags().GetString("html-file")
		staticOnly, _ := cmd.Flags().GetBool("static")

		var (
			res entity.ExtractionResult
			err error
		)
		if htmlFile != "" {
			html, readErr := os.ReadFile(htmlFile)
			if readErr != nil {
				return readErr
			}
			page, pageErr := static.NewPage(args[0], string(html))
			if pageErr != nil {
				return pageErr
			}
			res, err = app.Extraction(nil).Extract(cmd.Context(), page)
		} else {
			res, err = app.Extraction(app.Opener(staticOnly)).ExtractURL(cmd.Context(), args[0])
		}
		if err != nil {
			return fmt.Errorf("extract %s: %w", args[0], err)
		}
		return printJSON(res)
	},
}

func init() {
	extractCmd.Flags().String("html-file", "", "read the page from a saved HTML file")
	extractCmd.Flags().Bool("static", false, "fetch the page over HTTP without a browser")

	rootCmd.AddCommand(extractCmd)
}
