package engine

// boardChannel maps an element to its observation channel. Empty cells have
// no channel; Wall takes the slot Empty would have occupied.
func boardChannel(el Element) int {
	if el == Wall {
		return int(Empty)
	}
	return int(el)
}

// ObservationShape returns the CHW shape of GetObservation: one channel per
// non-empty element plus a one-hot over the held colour, over the board
// padded with a one-cell wall border.
func (e *GameEngine) ObservationShape() [3]int {
	return [3]int{NumChannels, e.shared.cols + 2, e.shared.rows + 2}
}

// GetObservation encodes the current state as a flat float32 tensor of the
// shape given by ObservationShape. Board channels hold 1 where the element
// is present; border cells are marked in the wall channel; the inventory
// channels are filled across the whole plane when their colour is held. The
// encoder is a read-only single pass and allocates only the output buffer.
func (e *GameEngine) GetObservation() []float32 {
	paddedRows := e.shared.rows + 2
	paddedCols := e.shared.cols + 2
	plane := paddedRows * paddedCols
	obs := make([]float32, NumChannels*plane)

	// Synthetic border in the wall channel.
	wallPlane := obs[boardChannel(Wall)*plane : (boardChannel(Wall)+1)*plane]
	for c := 0; c < paddedCols; c++ {
		wallPlane[c] = 1
		wallPlane[(paddedRows-1)*paddedCols+c] = 1
	}
	for r := 0; r < paddedRows; r++ {
		wallPlane[r*paddedCols] = 1
		wallPlane[r*paddedCols+paddedCols-1] = 1
	}

	// Board contents, shifted one cell in from the border.
	for i, el := range e.local.board {
		if el == Empty {
			continue
		}
		row := i/e.shared.cols + 1
		col := i%e.shared.cols + 1
		obs[boardChannel(el)*plane+row*paddedCols+col] = 1
	}

	// Inventory one-hot.
	if e.local.holding {
		channel := NumElements - 1 + int(e.local.inventory)
		invPlane := obs[channel*plane : (channel+1)*plane]
		for i := range invPlane {
			invPlane[i] = 1
		}
	}
	return obs
}

// EnvironmentObservationShape returns the shape of the board-only
// observation, without the inventory channels.
func (e *GameEngine) EnvironmentObservationShape() [3]int {
	return [3]int{NumElements - 1, e.shared.cols + 2, e.shared.rows + 2}
}

// GetEnvironmentObservation encodes the board channels only, for consumers
// that track the inventory separately.
func (e *GameEngine) GetEnvironmentObservation() []float32 {
	full := e.GetObservation()
	plane := (e.shared.rows + 2) * (e.shared.cols + 2)
	return full[:(NumElements-1)*plane]
}
