package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft <description...>",
	Short: "Draft SQL from a natural-language description",
	Example: `  patlens draft "top German applicants in medical technology since 2019"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(gatewayHTTPAddr)
		raw, err := client.DraftSQL(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			PrintError(err)
			return err
		}

		if PrintJSON(json.RawMessage(raw)) {
			return nil
		}

		var draft struct {
			Submission struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				SQLTemplate string `json:"sql_template"`
			} `json:"submission"`
		}
		if err := json.Unmarshal(raw, &draft); err != nil {
			fmt.Fprintln(os.Stdout, string(raw))
			return nil
		}

		PrintHeader(draft.Submission.Title)
		if draft.Submission.Description != "" {
			PrintInfo(draft.Submission.Description)
			PrintNewline()
		}
		for _, line := range strings.Split(draft.Submission.SQLTemplate, "\n") {
			PrintIndentedCode(line)
		}
		PrintHint("review the draft, then contribute it with POST /api/v1/queries")
		return nil
	},
}
