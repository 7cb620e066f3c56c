package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/broady/clientgen/cmd/clientgen/internal/check"
	"github.com/broady/clientgen/cmd/clientgen/internal/gen"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate API client code from a tree document."`
	Check   check.Cmd  `cmd:"" help:"Load a tree document and emit it in memory without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("clientgen"),
		kong.Description("Generate API clients (TypeScript, Go) from a refined element tree."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
