package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/tracing-exp/genai-export/internal/genai"
)

var warnColor = color.New(color.FgYellow)

func translateCommand() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Convert a Mastra message payload into the GenAI message format.",
		ArgsUsage: "[payload]",
		Description: `
The payload is read from the first argument, or from stdin when no argument is
given. Payloads that cannot be converted are printed unchanged and the reason
is written to stderr.`[1:],
		Action: func(c *cli.Context) error {
			var payload string
			switch c.Args().Len() {
			case 0:
				b, err := io.ReadAll(c.App.Reader)
				if err != nil {
					return fmt.Errorf("failed to read payload: %w", err)
				}
				payload = strings.TrimSpace(string(b))
			case 1:
				payload = c.Args().First()
			default:
				return fmt.Errorf("expected at most one payload argument, got %v", c.Args().Len())
			}

			out, err := genai.TryConvertMastraMessages(payload)
			if err != nil {
				_, _ = warnColor.Fprintf(c.App.ErrWriter, "WARN: payload left unchanged: %v\n", err)
				out = payload
			}
			_, err = fmt.Fprintln(c.App.Writer, out)
			return err
		},
	}
}
