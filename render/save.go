package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// The framebuffer channel selectors accepted by SaveFrame.
type Channel int

const (
	ChannelColor Channel = 0
	ChannelDepth Channel = 1
)

// SaveFrame writes the selected channel of the last composited frame to a
// PNG file. It fails with ErrFrameNotReady if no frame has ever reached
// Ready on this rank; write failures are wrapped and non-fatal. The image is
// only the full composited result on ranks that participated in the last
// reduction (with an all-reduce composite that is every rank).
func (co *Coordinator) SaveFrame(path string, channel Channel) error {
	tile, err := co.MapFrame()
	if err != nil {
		return err
	}

	var img image.Image
	switch channel {
	case ChannelColor:
		img = tile.RGBA()
	case ChannelDepth:
		img = tile.DepthImage()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: save frame: %w", err)
	}
	defer f.Close()

	if err = png.Encode(f, img); err != nil {
		return fmt.Errorf("render: encode frame: %w", err)
	}

	co.logger.Noticef("wrote %dx%d frame to %s", tile.W, tile.H, path)
	return nil
}
