package cli

import (
	"fmt"
	"strings"

	"github.com/mtc-analytics/patlens/pkg/catalog"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-validate every builtin query locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.New()
		if err := catalog.LoadBuiltins(cat); err != nil {
			PrintError(err)
			return err
		}

		warnings := 0
		for _, def := range cat.List(catalog.Filter{}) {
			if len(def.UnusedParameters) > 0 {
				PrintWarning(fmt.Sprintf("%s declares unused parameters: %s",
					def.Id, strings.Join(def.UnusedParameters, ", ")))
				warnings++
			}
		}

		PrintSuccess(fmt.Sprintf("%d builtin queries validated, %d warnings", cat.Len(), warnings))
		return nil
	},
}
