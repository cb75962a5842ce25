package grid

import (
	"image/color"
	"sync"
)

// SixelImage represents a decoded Sixel image.
type SixelImage struct {
	Width       uint32
	Height      uint32
	Data        []byte // RGBA pixel data
	Transparent bool   // Whether background is transparent
}

// sixelParser handles parsing of Sixel data.
type sixelParser struct {
	palette     [256]color.RGBA
	colorIndex  int
	x, y        int
	maxX, maxY  int
	pixels      map[int]map[int]color.RGBA
	transparent bool
}

// ParseSixel parses Sixel data and returns an RGBA image.
// params contains the DCS parameters (P1;P2;P3).
// data contains the raw Sixel bytes after 'q'.
func ParseSixel(params []int64, data []byte) (*SixelImage, error) {
	p := &sixelParser{
		pixels:     make(map[int]map[int]color.RGBA),
		colorIndex: 0,
	}

	// Initialize default VGA palette
	p.initDefaultPalette()

	// Parse DCS parameters
	// P1: pixel aspect ratio numerator (ignored)
	// P2: background select (0=device default, 1=no change, 2=set to color 0)
	// P3: horizontal grid size (ignored)
	if len(params) >= 2 && params[1] == 1 {
		p.transparent = true
	}

	// Parse sixel data
	p.parse(data)

	// Convert to RGBA image
	return p.toImage(), nil
}

// initDefaultPalette sets up the default VGA 16-color palette.
func (p *sixelParser) initDefaultPalette() {
	// Standard VGA colors
	vgaColors := []color.RGBA{
		{0, 0, 0, 255},       // 0: Black
		{0, 0, 205, 255},     // 1: Blue
		{205, 0, 0, 255},     // 2: Red
		{205, 0, 205, 255},   // 3: Magenta
		{0, 205, 0, 255},     // 4: Green
		{0, 205, 205, 255},   // 5: Cyan
		{205, 205, 0, 255},   // 6: Yellow
		{205, 205, 205, 255}, // 7: White
		{0, 0, 0, 255},       // 8: Black (repeat for HLS)
		{0, 0, 255, 255},     // 9: Bright Blue
		{255, 0, 0, 255},     // 10: Bright Red
		{255, 0, 255, 255},   // 11: Bright Magenta
		{0, 255, 0, 255},     // 12: Bright Green
		{0, 255, 255, 255},   // 13: Bright Cyan
		{255, 255, 0, 255},   // 14: Bright Yellow
		{255, 255, 255, 255}, // 15: Bright White
	}

	copy(p.palette[:], vgaColors)

	// Fill remaining with grayscale
	for i := 16; i < 256; i++ {
		gray := uint8((i - 16) * 255 / 239)
		p.palette[i] = color.RGBA{gray, gray, gray, 255}
	}
}

// parse processes the sixel byte stream.
func (p *sixelParser) parse(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		i++

		switch {
		case b == '$':
			// Carriage return - go to beginning of current sixel line
			p.x = 0

		case b == '-':
			// New line - move down 6 pixels and go to beginning
			p.x = 0
			p.y += 6

		case b == '!':
			// Repeat introducer: !<count><sixel>
			count, newI := p.parseNumber(data, i)
			i = newI
			if i < len(data) {
				sixel := data[i]
				i++
				if sixel >= '?' && sixel <= '~' {
					p.drawSixel(sixel, int(count))
				}
			}

		case b == '#':
			// Color introducer: #<index> or #<index>;<type>;<v1>;<v2>;<v3>
			colorNum, newI := p.parseNumber(data, i)
			i = newI

			if i < len(data) && data[i] == ';' {
				// Color definition
				i++ // skip ';'
				colorType, newI := p.parseNumber(data, i)
				i = newI

				if i < len(data) && data[i] == ';' {
					i++ // skip ';'
					v1, newI := p.parseNumber(data, i)
					i = newI

					if i < len(data) && data[i] == ';' {
						i++ // skip ';'
						v2, newI := p.parseNumber(data, i)
						i = newI

						if i < len(data) && data[i] == ';' {
							i++ // skip ';'
							v3, newI := p.parseNumber(data, i)
							i = newI

							if colorNum >= 0 && colorNum < 256 {
								if colorType == 1 {
									// HLS color
									p.palette[colorNum] = hlsToRGB(int(v1), int(v2), int(v3))
								} else {
									// RGB color (type 2 or default)
									// Values are 0-100 percentage
									r := uint8(v1 * 255 / 100)
									g := uint8(v2 * 255 / 100)
									b := uint8(v3 * 255 / 100)
									p.palette[colorNum] = color.RGBA{r, g, b, 255}
								}
							}
						}
					}
				}
			}

			// Select color
			if colorNum >= 0 && colorNum < 256 {
				p.colorIndex = int(colorNum)
			}

		case b >= '?' && b <= '~':
			// Sixel data character
			p.drawSixel(b, 1)

		case b == '"':
			// Raster attributes: "<Pan>;<Pad>;<Ph>;<Pv>
			// Pan/Pad = pixel aspect ratio, Ph/Pv = width/height
			// We parse but mostly ignore these
			for i < len(data) && data[i] != '$' && data[i] != '-' &&
				data[i] != '#' && data[i] != '!' &&
				!(data[i] >= '?' && data[i] <= '~') {
				i++
			}
		}
	}
}

// parseNumber parses a decimal number from data starting at index i.
func (p *sixelParser) parseNumber(data []byte, i int) (int64, int) {
	var n int64
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		n = n*10 + int64(data[i]-'0')
		i++
	}
	return n, i
}

// drawSixel draws a sixel character at the current position.
// A sixel represents 6 vertical pixels encoded in 6 bits.
func (p *sixelParser) drawSixel(b byte, count int) {
	if count <= 0 {
		count = 1
	}

	// Convert from sixel encoding (?-~ maps to 0-63)
	bits := b - '?'

	c := p.palette[p.colorIndex]

	for r := 0; r < count; r++ {
		// Each bit represents a vertical pixel (bit 0 = top)
		for bit := 0; bit < 6; bit++ {
			if bits&(1<<bit) != 0 {
				py := p.y + bit
				px := p.x

				if p.pixels[py] == nil {
					p.pixels[py] = make(map[int]color.RGBA)
				}
				p.pixels[py][px] = c

				if px > p.maxX {
					p.maxX = px
				}
				if py > p.maxY {
					p.maxY = py
				}
			}
		}
		p.x++
	}
}

// toImage converts the parsed pixels to an RGBA image.
func (p *sixelParser) toImage() *SixelImage {
	// No pixels drawn
	if len(p.pixels) == 0 {
		return &SixelImage{
			Width:  0,
			Height: 0,
			Data:   nil,
		}
	}

	width := uint32(p.maxX + 1)
	height := uint32(p.maxY + 1)

	// Allocate RGBA buffer
	data := make([]byte, width*height*4)

	// Fill with transparent or background color
	if p.transparent {
		// Leave as zero (transparent)
	} else {
		// Fill with color 0 (background)
		bg := p.palette[0]
		for i := uint32(0); i < width*height; i++ {
			data[i*4+0] = bg.R
			data[i*4+1] = bg.G
			data[i*4+2] = bg.B
			data[i*4+3] = bg.A
		}
	}

	// Copy pixels
	for y, row := range p.pixels {
		for x, c := range row {
			if x >= 0 && x < int(width) && y >= 0 && y < int(height) {
				offset := (uint32(y)*width + uint32(x)) * 4
				data[offset+0] = c.R
				data[offset+1] = c.G
				data[offset+2] = c.B
				data[offset+3] = c.A
			}
		}
	}

	return &SixelImage{
		Width:       width,
		Height:      height,
		Data:        data,
		Transparent: p.transparent,
	}
}

// hlsToRGB converts HLS color to RGB.
// Sixel uses non-standard HLS where:
// - Hue: 0-360 degrees (blue=0, red=120, green=240)
// - Lightness: 0-100
// - Saturation: 0-100
func hlsToRGB(h, l, s int) color.RGBA {
	if s == 0 {
		// Achromatic (gray)
		v := uint8(l * 255 / 100)
		return color.RGBA{v, v, v, 255}
	}

	// Normalize values
	hNorm := float64(h) / 360.0
	lNorm := float64(l) / 100.0
	sNorm := float64(s) / 100.0

	// Rotate hue for Sixel's non-standard color wheel
	// Sixel: blue=0, red=120, green=240
	// Standard: red=0, green=120, blue=240
	hNorm = hNorm + 2.0/3.0 // Shift by 240 degrees
	if hNorm >= 1.0 {
		hNorm -= 1.0
	}

	var q float64
	if lNorm < 0.5 {
		q = lNorm * (1 + sNorm)
	} else {
		q = lNorm + sNorm - lNorm*sNorm
	}
	p := 2*lNorm - q

	r := hueToRGB(p, q, hNorm+1.0/3.0)
	g := hueToRGB(p, q, hNorm)
	b := hueToRGB(p, q, hNorm-1.0/3.0)

	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

// PixelRect is a rectangle in cell-scaled pixel coordinates, used to track
// where a decoded Sixel image sits on the grid. Y can go negative once the
// image's top has scrolled past the top of the scrollback.
type PixelRect struct {
	X, Y          int
	Width, Height int
}

// IntersectingRect returns the overlap between r and other, expressed
// relative to r's own origin. Returns ok=false when the rectangles don't
// overlap.
func (r PixelRect) IntersectingRect(other PixelRect) (PixelRect, bool) {
	selfTop, selfBottom := r.Y, r.Y+r.Height
	selfLeft, selfRight := r.X, r.X+r.Width
	otherTop, otherBottom := other.Y, other.Y+other.Height
	otherLeft, otherRight := other.X, other.X+other.Width

	x := max(selfLeft, otherLeft)
	y := max(selfTop, otherTop)
	right := min(selfRight, otherRight)
	bottom := min(selfBottom, otherBottom)
	width := right - x
	height := bottom - y
	if width <= 0 || height <= 0 {
		return PixelRect{}, false
	}
	return PixelRect{X: x - r.X, Y: y - r.Y, Width: width, Height: height}, true
}

// coveredBy reports whether other's intersection with r covers r entirely,
// i.e. r is fully contained within other.
func (r PixelRect) coveredBy(other PixelRect) bool {
	inter, ok := r.IntersectingRect(other)
	return ok && inter.X == 0 && inter.Y == 0 && inter.Width == r.Width && inter.Height == r.Height
}

// SixelGrid tracks where decoded Sixel images sit on a terminal's grid in
// pixel coordinates, so a later image that fully covers an earlier one can
// reclaim it instead of letting both linger forever.
type SixelGrid struct {
	mu          sync.Mutex
	locations   map[uint32]PixelRect
	idsToReap   []uint32
	prevCellW   int
	prevCellH   int
}

// NewSixelGrid creates an empty SixelGrid.
func NewSixelGrid() *SixelGrid {
	return &SixelGrid{locations: make(map[uint32]PixelRect)}
}

// RegisterImage records imageID's pixel rect and reaps any previously
// registered image whose rect is now fully covered by it. Returns the ids
// reaped as a side effect of this registration (also queued for later
// DrainImageIDsToReap calls).
func (g *SixelGrid) RegisterImage(imageID uint32, rect PixelRect) []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	var reaped []uint32
	for id, existing := range g.locations {
		if existing.coveredBy(rect) {
			reaped = append(reaped, id)
		}
	}
	for _, id := range reaped {
		delete(g.locations, id)
	}
	g.idsToReap = append(g.idsToReap, reaped...)
	g.locations[imageID] = rect
	return reaped
}

// ImageCoordinates returns every tracked image id and its current pixel rect.
func (g *SixelGrid) ImageCoordinates() map[uint32]PixelRect {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[uint32]PixelRect, len(g.locations))
	for id, r := range g.locations {
		out[id] = r
	}
	return out
}

// CutOffRectFromImages returns, for every tracked image whose rect overlaps
// rectToCut, the image id and the overlapping sub-rect relative to that
// image. Used when an erase operation needs to punch a hole out of images
// instead of an entire cell.
func (g *SixelGrid) CutOffRectFromImages(rectToCut PixelRect) map[uint32]PixelRect {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out map[uint32]PixelRect
	for id, r := range g.locations {
		if inter, ok := r.IntersectingRect(rectToCut); ok {
			if out == nil {
				out = make(map[uint32]PixelRect)
			}
			out[id] = inter
		}
	}
	return out
}

// OffsetGridTop shifts every tracked image up by one cell row's worth of
// pixels, as happens when the scrollback gains a new line at the top. Images
// that scroll entirely above the grid are queued for reaping.
func (g *SixelGrid) OffsetGridTop(cellHeightPixels int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, r := range g.locations {
		r.Y -= cellHeightPixels
		g.locations[id] = r
		if r.Y+r.Height <= 0 {
			g.idsToReap = append(g.idsToReap, id)
		}
	}
	for _, id := range g.idsToReap {
		delete(g.locations, id)
	}
}

// CharacterCellSizeChanged rescales every tracked image's pixel position
// (X and Y) when the terminal's cell pixel dimensions change (e.g. a font
// size change reported by the attached display). Widths and heights are
// left unchanged.
func (g *SixelGrid) CharacterCellSizeChanged(newCellW, newCellH int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.prevCellW > 0 && g.prevCellH > 0 && newCellW > 0 && newCellH > 0 &&
		(g.prevCellW != newCellW || g.prevCellH != newCellH) {
		for id, r := range g.locations {
			r.X = (r.X / g.prevCellW) * newCellW
			r.Y = (r.Y / g.prevCellH) * newCellH
			g.locations[id] = r
		}
	}
	g.prevCellW, g.prevCellH = newCellW, newCellH
}

// DrainImageIDsToReap returns and clears the set of image ids queued for
// reaping since the last drain.
func (g *SixelGrid) DrainImageIDsToReap() []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := g.idsToReap
	g.idsToReap = nil
	return ids
}

// Clear removes all tracked images and returns their ids for reaping.
func (g *SixelGrid) Clear() []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]uint32, 0, len(g.locations)+len(g.idsToReap))
	for id := range g.locations {
		ids = append(ids, id)
	}
	ids = append(ids, g.idsToReap...)
	g.locations = make(map[uint32]PixelRect)
	g.idsToReap = nil
	return ids
}

// hueToRGB is a helper for HLS to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
