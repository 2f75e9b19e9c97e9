package engine

// Sprite geometry for the rendered image.
const (
	SpriteWidth    = 32
	SpriteHeight   = 32
	SpriteChannels = 3
)

// pixel is a flat RGB colour.
type pixel struct {
	r, g, b byte
}

// elementPixels is the static element-to-colour palette: twelve saturated
// key colours, white for the goal, dark red for the agent, mid-grey for
// empty cells, black for walls and the border.
var elementPixels = [NumElements]pixel{
	{0x9c, 0x5a, 0x3c}, // Colour0
	{0xed, 0x1c, 0x24}, // Colour1
	{0xff, 0xa3, 0xb1}, // Colour2
	{0xff, 0x7e, 0x00}, // Colour3
	{0xe5, 0xaa, 0x7a}, // Colour4
	{0xff, 0xc2, 0x0e}, // Colour5
	{0xf5, 0xe4, 0x9c}, // Colour6
	{0xa8, 0xe6, 0x1d}, // Colour7
	{0x22, 0xb1, 0x4c}, // Colour8
	{0x00, 0xb7, 0xef}, // Colour9
	{0x6f, 0x31, 0x98}, // Colour10
	{0x2f, 0x36, 0x99}, // Colour11
	{0xff, 0xff, 0xff}, // ColourGoal
	{0x99, 0x00, 0x30}, // Agent
	{0xb4, 0xb4, 0xb4}, // Empty
	{0x00, 0x00, 0x00}, // Wall
}

// ImageShape returns the HWC shape of ToImage, including the one-sprite
// border around the board.
func (e *GameEngine) ImageShape() [3]int {
	return [3]int{
		(e.shared.rows + 2) * SpriteHeight,
		(e.shared.cols + 2) * SpriteWidth,
		SpriteChannels,
	}
}

// ToImage renders the state as a flat HWC RGB byte buffer: each cell becomes
// a flat-colour sprite inside a black border, and the held colour, if any,
// is painted into the top-left corner sprite so the image communicates the
// inventory without a separate legend.
func (e *GameEngine) ToImage() []byte {
	rows := e.shared.rows + 2
	cols := e.shared.cols + 2
	img := make([]byte, rows*cols*SpriteWidth*SpriteHeight*SpriteChannels)

	if e.local.holding {
		fillSprite(img, 0, 0, cols, elementPixels[e.local.inventory])
	}

	boardIdx := 0
	for h := 1; h < rows-1; h++ {
		for w := 1; w < cols-1; w++ {
			fillSprite(img, h, w, cols, elementPixels[e.local.board[boardIdx]])
			boardIdx++
		}
	}
	return img
}

// fillSprite paints the sprite at cell (h, w) with a flat colour. cols is
// the padded image width in sprites.
func fillSprite(img []byte, h, w, cols int, px pixel) {
	rowStride := cols * SpriteWidth * SpriteChannels
	topLeft := h*SpriteHeight*rowStride + w*SpriteWidth*SpriteChannels
	for r := 0; r < SpriteHeight; r++ {
		idx := topLeft + r*rowStride
		for c := 0; c < SpriteWidth; c++ {
			img[idx+0] = px.r
			img[idx+1] = px.g
			img[idx+2] = px.b
			idx += SpriteChannels
		}
	}
}
