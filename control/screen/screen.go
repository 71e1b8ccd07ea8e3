// Package screen draws the clock's characters as 7-segment shapes on my LED matrix, and retains
// the result for debugging the rest of the program without the matrix attached.
package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"net/http"
	"sync"

	"github.com/jrockway/segment-clock/control/segment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/image/draw"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/devices/apa102"
)

const (
	rows         = 8
	cols         = 8
	panels       = 6
	width        = cols * panels
	cellWidth    = 6  // One character is 6x8 pixels, so the matrix holds 8 of them.
	previewScale = 20 // Size of one pixel in the rendered image.
	previewGap   = 4  // Dark border around each pixel, to simulate pixel spacing.

	idlePower  = 0.4174 * 5 // W
	powerLimit = 10         // W
)

// Cells is the number of characters the matrix holds.
const Cells = width / cellWidth

// ErrFull is returned when more characters are written than the matrix has cells.
var ErrFull = errors.New("screen: all cells written")

var powerMetric = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "screen_power_watts",
	Help: "estimated power drawn by the led matrix for the current frame, after limiting",
})

// Screen represents the particular display I built for this project.  It consists of 6 8x8 grids of
// APA102 LEDs.  Each grid's 0th LED is in the top-left corner, and is column-major.  Odd-numbered
// grids are upside down.  The result is a pixel ordering like this:
//
// 0 8 ... 56 | 127 .. .. | 128 ...
// 1 . ... .. | 126 .. .. | ...
// 2 . ... .. | ... .. .. |
// 3 . ... .. | ... .. .. |
// 4 . ... .. | ... .. .. |
// 5 . ... .. | ... .. .. |
// 6 . ... .. | ... .. 65 |
// 7 . ... 63 | ... .. 64 |
//
// The panels come from two batches with wildly-different color correction curves.  This library
// applies the corrections to the panels.
//
// I used very small-guage wire and cannot actually provide the 5V * (8*8*6*60mA) = 115W that the
// display would require at full brightness with all pixels on.  Also everything would catch on
// fire.  So we "current limit" the display.
//
// Screen is a character display: Home, write up to 8 characters, then Flush to show them.
type Screen struct {
	leds *apa102.Dev

	// Lit is the color of a lit segment at full brightness.
	Lit color.NRGBA64

	canvas *image.NRGBA64
	cursor int
	level  int

	imageMu sync.Mutex
	image   *image.NRGBA64 // must hold imageMu to read or write.
}

// NewScreen returns an initialized Screen object.  With a nil port, frames are only kept for the
// preview.
func NewScreen(p spi.Port) (*Screen, error) {
	s := &Screen{
		Lit:    color.NRGBA64{R: 0xffff, G: 0x8000, B: 0, A: 0xffff},
		canvas: emptyCanvas(),
		level:  15,
		image:  image.NewNRGBA64(image.Rect(0, 0, width*previewScale, rows*previewScale)),
	}
	if p == nil {
		return s, nil
	}
	opts := &apa102.Opts{
		NumPixels:        rows * cols * panels,
		Intensity:        255,
		Temperature:      apa102.NeutralTemp,
		DisableGlobalPWM: true,
	}
	leds, err := apa102.New(p, opts)
	if err != nil {
		return nil, fmt.Errorf("init apa102: %w", err)
	}
	s.leds = leds
	return s, nil
}

// emptyCanvas returns an image that's the right size for the display.
func emptyCanvas() *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, width, rows))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}

// Home clears the frame being drawn and moves the cursor to the leftmost cell.
func (s *Screen) Home() error {
	s.canvas = emptyCanvas()
	s.cursor = 0
	return nil
}

// SetBrightness scales the lit color; 15 is full brightness and 0 is off.
func (s *Screen) SetBrightness(level int) error {
	if level < 0 {
		level = 0
	}
	if level > 15 {
		level = 15
	}
	s.level = level
	return nil
}

func (s *Screen) litColor() color.NRGBA64 {
	scale := func(v uint16) uint16 { return uint16(uint32(v) * uint32(s.level) / 15) }
	return color.NRGBA64{R: scale(s.Lit.R), G: scale(s.Lit.G), B: scale(s.Lit.B), A: 0xffff}
}

type span struct{ x0, y0, x1, y1 int } // inclusive

// shapes places each segment inside a cell.  Column 5 is the gap between characters and holds the
// decimal point.
var shapes = map[byte]span{
	segment.A:  {1, 0, 3, 0},
	segment.B:  {4, 1, 4, 2},
	segment.C:  {4, 4, 4, 5},
	segment.D:  {1, 6, 3, 6},
	segment.E:  {0, 4, 0, 5},
	segment.F:  {0, 1, 0, 2},
	segment.G:  {1, 3, 3, 3},
	segment.DP: {5, 6, 5, 6},
}

// WriteGlyph draws g in the cell at the cursor and moves the cursor right.  A colon is drawn as two
// dots; everything else uses its 7-segment shape.
func (s *Screen) WriteGlyph(g rune) error {
	if s.cursor >= Cells {
		return ErrFull
	}
	x := s.cursor * cellWidth
	c := s.litColor()
	if g == ':' {
		s.canvas.SetNRGBA64(x+2, 2, c)
		s.canvas.SetNRGBA64(x+2, 5, c)
	} else {
		bits := segment.Encode(g)
		for bit, sp := range shapes {
			if bits&bit == 0 {
				continue
			}
			draw.Draw(s.canvas, image.Rect(x+sp.x0, sp.y0, x+sp.x1+1, sp.y1+1), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	s.cursor++
	return nil
}

// WriteText draws each character of t.
func (s *Screen) WriteText(t string) error {
	for _, r := range t {
		if err := s.WriteGlyph(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush shows the frame drawn since Home.
func (s *Screen) Flush() error {
	return s.Display(s.canvas)
}

// Blank blanks the screen.
func (s *Screen) Blank() error {
	if err := s.Display(emptyCanvas()); err != nil {
		return fmt.Errorf("blank display: %w", err)
	}
	return nil
}

// ServeHTTP serves the current image as a PNG.
func (s *Screen) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Add("content-type", "image/png")
	w.WriteHeader(http.StatusOK)
	s.imageMu.Lock()
	defer s.imageMu.Unlock()
	if err := png.Encode(w, s.image); err != nil {
		log.Printf("encoding image: %v", err)
	}
}

// updateCurrentImage updates the image data that will be returned via the web interface.
func (s *Screen) updateCurrentImage(img image.Image) {
	s.imageMu.Lock()
	defer s.imageMu.Unlock()
	draw.NearestNeighbor.Scale(s.image, s.image.Bounds(), img, img.Bounds(), draw.Src, nil)
	gap := image.NewUniform(color.NRGBA64{A: 0xffff})
	for x := 0; x < width; x++ {
		draw.Draw(s.image, image.Rect((x+1)*previewScale-previewGap, 0, (x+1)*previewScale, rows*previewScale), gap, image.Point{}, draw.Src)
	}
	for y := 0; y < rows; y++ {
		draw.Draw(s.image, image.Rect(0, (y+1)*previewScale-previewGap, width*previewScale, (y+1)*previewScale), gap, image.Point{}, draw.Src)
	}
}

// indexOf maps an (x,y) coordinate to the strand index of my particular display.
func indexOf(x, y int) int {
	panel := x / cols
	if panel%2 == 0 {
		return x*cols + y
	}
	pix := (x*cols + y) % (rows * cols)
	return (panel+1)*rows*cols - 1 - pix
}

// powerFor returns the number of watts that displaying color c on one pixel will use.
//
// For the convenience of calling code, we neglect to include the full-off current of 1.09mA per
// pixel.
func powerFor(c color.Color) float64 {
	// The datasheet says we'll use a maximum of 60mA per pixel, so we assume that displaying
	// the brighest red + blue + green is what causes that to happen.
	r, g, b, _ := c.RGBA()
	return .02 * 5 * (float64(r)/0xffff + float64(g)/0xffff + float64(b)/0xffff)
}

func gamma(c uint32) uint8 {
	u := float64(c) / 0xffff
	return uint8(255 * math.Pow((u+0.055)/(1.055), 2.4))
}

// colorCorrect maps a color.Color to the device color of the panel at column x.
func colorCorrect(x int, c color.Color) color.NRGBA {
	r, g, b, _ := c.RGBA()
	if x/cols < 4 {
		return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
	}
	return color.NRGBA{R: gamma(r), G: gamma(g), B: gamma(b), A: 0xff}
}

// toMatrix takes a cols*panels x rows image and converts it to a slice of colors to send to the
// apa102 strip, along with the power the strip will draw.
//
// Every pixel is scaled down by the same factor to stay within the power budget.  Input pixels are
// 64-bit colors, output pixels are device-native 24-bit colors with per-panel color correction.
func toMatrix(img image.Image) ([]color.NRGBA, float64) {
	result := make([]color.NRGBA, rows*cols*panels)

	var power float64
	for x := 0; x < width; x++ {
		for y := 0; y < rows; y++ {
			power += powerFor(img.At(x, y))
		}
	}
	scale := float64(1)
	if power > powerLimit {
		scale = powerLimit / power
	}

	power = 0
	for x := 0; x < width; x++ {
		for y := 0; y < rows; y++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := color.NRGBA64{
				R: uint16(scale * float64(r)),
				G: uint16(scale * float64(g)),
				B: uint16(scale * float64(b)),
				A: 0xffff,
			}
			power += powerFor(c)
			result[indexOf(x, y)] = colorCorrect(x, c)
		}
	}
	return result, power + idlePower
}

// Display displays the provided image on the screen.
func (s *Screen) Display(img image.Image) error {
	s.updateCurrentImage(img)
	if s.leds == nil {
		return nil
	}
	pixels, power := toMatrix(img)
	powerMetric.Set(power)
	if _, err := s.leds.Write(apa102.ToRGB(pixels)); err != nil {
		return fmt.Errorf("write to apa102 strand: %w", err)
	}
	return nil
}
