package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the litrag version and Go runtime",
	Annotations: map[string]string{
		annotationNoServices: "true",
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("litrag %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
