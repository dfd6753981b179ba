package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/inspektor-gadget/website/cmd/igdocs/commands"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("igdocs"),
		kong.Description("Import and render the Inspektor Gadget documentation."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(&commands.Global{Stdout: os.Stdout})
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
