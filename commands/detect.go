package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"search-settings-service/models"
)

func detectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect settings from a JSON or YAML attributes object (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				name string
				err  error
			)
			if len(args) == 1 {
				name = args[0]
				data, err = os.ReadFile(name)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return errors.Wrap(err, "error reading attributes")
			}

			attributes, err := parseAttributes(name, data)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), format, svc.Detect(attributes))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// parseAttributes decodes JSON when the file says so or the content looks
// like a JSON object, YAML otherwise.
func parseAttributes(name string, data []byte) (models.Attributes, error) {
	var attributes models.Attributes
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("no attributes given")
	}

	if strings.EqualFold(filepath.Ext(name), ".json") || trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &attributes); err != nil {
			return nil, errors.Wrap(err, "error parsing JSON attributes")
		}
	} else if err := yaml.Unmarshal(trimmed, &attributes); err != nil {
		return nil, errors.Wrap(err, "error parsing YAML attributes")
	}
	return attributes, nil
}

func writeSettings(w io.Writer, format string, settings models.Settings) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(settings)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(settings)
	}
	return fmt.Errorf("unknown format %q", format)
}
