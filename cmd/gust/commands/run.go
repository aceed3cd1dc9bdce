package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/driftworks/gust/src/node"
	"github.com/driftworks/gust/src/transport"
)

//NewRunCmd returns the command that starts a gust node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runGust,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runGust(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	trans := transport.NewStreamTransport(os.Stdin, os.Stdout)

	// the first message on stdin has to be init; nothing else happens before
	// the handshake completes
	ident, err := node.OpenSession(trans, logger)
	if err != nil {
		logger.WithError(err).Error("Cannot open session")
		return err
	}

	var core node.Core
	switch _config.Workload {
	case "broadcast":
		core = node.NewBroadcastCore(ident, trans, logger)
	case "echo":
		core = node.NewEchoCore(ident, trans, logger)
	case "unique-id":
		core = node.NewUniqueIDCore(ident, trans, logger)
	default:
		return fmt.Errorf("unknown workload %q", _config.Workload)
	}

	n := node.NewNode(_config, ident, core, trans)

	return n.Run()
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Optional file to copy logs to, in JSON")
	cmd.Flags().StringP("workload", "w", _config.Workload, "broadcast, echo, or unique-id")
	cmd.Flags().Duration("gossip-interval", _config.GossipInterval, "Time between gossip rounds (0 disables gossip)")
	cmd.Flags().Bool("strict", _config.Strict, "Terminate on protocol violations instead of ignoring them")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	_config.Logger().WithFields(logrus.Fields{
		"log":             _config.LogLevel,
		"log-file":        _config.LogFile,
		"workload":        _config.Workload,
		"gossip-interval": _config.GossipInterval,
		"strict":          _config.Strict,
	}).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for a config file in the working directory; gust.toml (.json,
	// .yaml also work)
	viper.SetConfigName("gust")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found")
	} else {
		return err
	}

	// second unmarshal to read from the config file
	return viper.Unmarshal(_config)
}
