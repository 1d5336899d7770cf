package main

import (
	"fmt"
	"tush00nka/taskboard/internal/app"
	"tush00nka/taskboard/internal/config"
	"tush00nka/taskboard/internal/pkg/auth"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pkt.systems/pslog"
)

func newRootCommand(logger pslog.Logger) *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "taskboard serves task attachments over HTTP",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  # Local disk storage with an embedded database
  DB_DRIVER=sqlite UPLOAD_DIR=/var/lib/taskboard/uploads taskboard

  # S3 compatible storage (MinIO)
  STORAGE_BACKEND=s3 S3_ENDPOINT=http://localhost:9000 S3_BUCKET=attachments taskboard --config prod.env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Info("config.loaded",
				"db_driver", cfg.DBDriver,
				"storage", cfg.StorageBackend,
				"max_file_size", cfg.MaxFileSizeRaw,
			)
			return app.Run(cmd.Context(), cfg, logger)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "path to an env-style config file (default ./.env)")
	flags := cmd.Flags()
	flags.String("port", "8080", "listen port")
	if err := bindFlags(v, flags, map[string]string{"SERVER_PORT": "port"}); err != nil {
		panic(err)
	}

	cmd.AddCommand(newTokenCommand(v, &configFile))
	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// newTokenCommand mints a bearer token for local testing.
func newTokenCommand(v *viper.Viper, configFile *string) *cobra.Command {
	var userID uint

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for a user id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}
			if err := config.ReadFile(v, *configFile); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			tokens := auth.NewTokenManager(v.GetString("JWT_KEY"))
			if tokens.Insecure && v.GetString("ENVIRONMENT") != "development" {
				return fmt.Errorf("JWT_KEY is required outside development")
			}
			token, err := tokens.GenerateToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "user id to embed in the token")
	return cmd
}
