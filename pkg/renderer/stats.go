package renderer

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TileStats contains statistics from rendering one tile
type TileStats struct {
	Samples   int // Samples splatted into the framebuffer
	Discarded int // Samples dropped for NaN or negative radiance
	Bounces   int // Total path length of the splatted samples
}

func (s *TileStats) add(o TileStats) {
	s.Samples += o.Samples
	s.Discarded += o.Discarded
	s.Bounces += o.Bounces
}

// FrameStats summarizes one rendered frame
type FrameStats struct {
	Frame      uint64        // Frame number, starting at 0
	Generation uint64        // Framebuffer generation after the frame
	Published  bool          // Whether the frame reached the consumer slot
	Tiles      int           // Tile tasks dispatched
	Duration   time.Duration // Wall time of the frame
	TileStats
}

// AveragePathLength returns the mean bounce count of the frame's samples
func (fs FrameStats) AveragePathLength() float64 {
	if fs.Samples == 0 {
		return 0
	}
	return float64(fs.Bounces) / float64(fs.Samples)
}

var statsPrinter = message.NewPrinter(language.English)

// String formats the stats for logs, with grouped digits
func (fs FrameStats) String() string {
	return statsPrinter.Sprintf("frame %d (gen %d): %d samples, %d discarded, %.2f avg bounces in %v",
		fs.Frame, fs.Generation, fs.Samples, fs.Discarded, fs.AveragePathLength(), fs.Duration.Round(time.Millisecond))
}
