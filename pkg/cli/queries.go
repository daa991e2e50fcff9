package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	listCategory string
	listTags     []string
	listSearch   string
	listCommon   bool
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Browse the query catalog",
}

var queriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(gatewayHTTPAddr)
		defs, err := client.ListQueries(cmd.Context(), listCategory, listSearch, listTags, listCommon)
		if err != nil {
			PrintError(err)
			return err
		}

		if PrintJSON(defs) {
			return nil
		}

		if len(defs) == 0 {
			PrintInfo("no queries match the filter")
			return nil
		}

		table := NewTable("ID", "TITLE", "CATEGORY", "TAGS")
		for _, def := range defs {
			table.AddRow(def.Id, Truncate(def.Title, 48), def.Category, strings.Join(def.Tags, ","))
		}
		PrintNewline()
		table.Print()
		PrintNewline()
		return nil
	},
}

var queriesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one query definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(gatewayHTTPAddr)
		def, err := client.GetQuery(cmd.Context(), args[0])
		if err != nil {
			PrintError(err)
			return err
		}

		if PrintJSON(def) {
			return nil
		}

		PrintHeader(def.Id + ": " + def.Title)
		PrintKeyValue("Category", def.Category)
		PrintKeyValue("Tags", strings.Join(def.Tags, ", "))
		PrintKeyValue("Description", def.Description)
		if len(def.Parameters) > 0 {
			PrintNewline()
			table := NewTable("PARAMETER", "KIND", "REQUIRED")
			for _, p := range def.Parameters {
				required := ""
				if p.Required {
					required = "yes"
				}
				table.AddRow(p.Name, string(p.Kind), required)
			}
			table.Print()
		}
		PrintNewline()
		PrintInfo("SQL template:")
		for _, line := range strings.Split(def.Template, "\n") {
			PrintIndentedCode(line)
		}
		PrintNewline()
		return nil
	},
}

// PrintIndentedCode prints one line of SQL in the code style.
func PrintIndentedCode(line string) {
	fmt.Println("    " + CodeStyle.Render(line))
}

func init() {
	queriesListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	queriesListCmd.Flags().StringSliceVar(&listTags, "tag", nil, "Filter by stakeholder tag (repeatable)")
	queriesListCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive substring search")
	queriesListCmd.Flags().BoolVar(&listCommon, "common", false, "Only common questions")

	queriesCmd.AddCommand(queriesListCmd)
	queriesCmd.AddCommand(queriesShowCmd)
}
