package cmd

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/borealis-gfx/borealis/comm"
	"github.com/borealis-gfx/borealis/render"
	"github.com/borealis-gfx/borealis/sg"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render the demo scene across a group of in-process ranks and save the
// composited frame from rank 0.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	frameW := ctx.Int("width")
	frameH := ctx.Int("height")
	ranks := ctx.Int("ranks")
	out := ctx.String("out")

	comms, err := comm.NewLocalGroup(ranks)
	if err != nil {
		return err
	}

	logger.Noticef("rendering %dx%d frame across %d ranks", frameW, frameH, ranks)

	var wg sync.WaitGroup
	stats := make([]render.FrameStats, ranks)
	errs := make([]error, ranks)

	for rank := 0; rank < ranks; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = renderRank(comms[rank], frameW, frameH, out, &stats[rank])
		}(rank)
	}
	wg.Wait()

	for rank, err := range errs {
		if err != nil {
			return fmt.Errorf("rank %d: %w", rank, err)
		}
	}

	displayFrameStats(stats)
	return nil
}

// One rank's render loop: build the scene, render the navigation frame,
// render again for the full sized frame, then save on rank 0.
func renderRank(c comm.Communicator, frameW, frameH int, out string, stats *render.FrameStats) error {
	sess := sg.NewSession(c)
	frame, err := buildDemoScene(sess, frameW, frameH)
	if err != nil {
		return err
	}
	defer frame.Release()

	// First frame renders at navigation resolution; render again for the
	// full sized frame.
	if err = frame.StartNewFrame(); err != nil {
		return err
	}
	if err = frame.WaitOnFrame(); err != nil {
		return err
	}
	if err = frame.StartNewFrame(); err != nil {
		return err
	}
	if err = frame.WaitOnFrame(); err != nil {
		return err
	}

	*stats = frame.Stats()
	if sess.Rank() == 0 {
		return frame.SaveFrame(out, render.ChannelColor)
	}
	return nil
}

func displayFrameStats(stats []render.FrameStats) {
	sort.Slice(stats, func(i, j int) bool { return stats[i].Rank < stats[j].Rank })

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Rank", "Resolution", "Mode", "Render time", "Composite time"})
	for _, stat := range stats {
		mode := "full"
		if stat.Navigation {
			mode = "navigation"
		}
		table.Append([]string{
			fmt.Sprintf("%d", stat.Rank),
			fmt.Sprintf("%dx%d", stat.FrameW, stat.FrameH),
			mode,
			fmt.Sprintf("%s", stat.RenderTime),
			fmt.Sprintf("%s", stat.CompositeTime),
		})
	}

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
