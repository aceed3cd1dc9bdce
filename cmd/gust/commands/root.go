package commands

import (
	"github.com/spf13/cobra"

	"github.com/driftworks/gust/src/config"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for gust
var RootCmd = &cobra.Command{
	Use:              "gust",
	Short:            "gust - gossiping broadcast node",
	TraverseChildren: true,
}
