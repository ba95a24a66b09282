package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Output formats of the build result.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a new version of the project's package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			if output != OutputYAML && output != OutputJSON {
				return zerr.With(zerr.New("unknown output format"), "output", output)
			}

			dir, _ := cmd.Flags().GetString("dir")
			file, _ := cmd.Flags().GetString("config")
			local, _ := cmd.Flags().GetBool("local")
			ctx := config.ContextWithOverrides(cmd.Context(), config.Overrides{
				WorkDir:    dir,
				ConfigFile: file,
				Local:      local,
			})

			components, err := c.init(ctx)
			if err != nil {
				return err
			}

			versionType, _ := cmd.Flags().GetString("version-type")
			versionName, _ := cmd.Flags().GetString("version-name")
			skipValidation, _ := cmd.Flags().GetBool("skip-validation")
			result, err := components.App.Build(ctx, app.BuildOptions{
				Dir:            components.Dir,
				ConfigFile:     components.ConfigFile,
				VersionBump:    versionType,
				VersionName:    versionName,
				SkipValidation: skipValidation,
			})
			if err != nil {
				components.Logger.Error(err)
				return zerr.Wrap(domain.ErrBuildExecutionFailed, "build")
			}

			return writeResult(cmd.OutOrStdout(), result, output)
		},
	}
	cmd.Flags().StringP("version-type", "t", "", "Version field to increment: major, minor or patch")
	cmd.Flags().String("version-name", "", "Name of the new version")
	cmd.Flags().Bool("skip-validation", false, "Ask the build service to skip validation")
	cmd.Flags().StringP("output", "o", OutputYAML, "Result format: yaml or json")
	return cmd
}

func writeResult(w io.Writer, result *domain.BuildResult, format string) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}
