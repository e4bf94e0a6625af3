package cmd

import (
	"bytes"
	"strings"

	"github.com/borealis-gfx/borealis/render"
	"github.com/borealis-gfx/borealis/sg"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the registered node types, subtypes, light kinds and backends.
func ListNodeTypes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Registry", "Entries"})
	table.Append([]string{"node types", strings.Join(sg.NodeTypes(), ", ")})
	table.Append([]string{"subtypes", strings.Join(sg.Subtypes(), ", ")})
	table.Append([]string{"light kinds", strings.Join(sg.LightKinds(), ", ")})
	table.Append([]string{"backends", strings.Join(render.Backends(), ", ")})

	table.Render()
	logger.Noticef("registered scene graph capabilities\n%s", buf.String())
	return nil
}
