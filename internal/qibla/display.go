package qibla

// DisplayState is the rotation to apply to the compass dial and the qibla
// arrow. ArrowRotation is nil while no bearing is known.
type DisplayState struct {
	CompassRotation float64  `json:"compassRotation"`
	ArrowRotation   *float64 `json:"arrowRotation,omitempty"`
}

// UpdateDisplay derives the display for the latest bearing and heading.
// A heading without a value leaves prev untouched.
func UpdateDisplay(prev DisplayState, current *BearingResult, heading HeadingSample) DisplayState {
	h, ok := heading.Heading()
	if !ok {
		return prev
	}
	h = Normalize360(h)

	next := DisplayState{CompassRotation: Normalize360(-h)}
	if current != nil {
		arrow := Normalize360(current.QiblaDirection - h + 360)
		next.ArrowRotation = &arrow
	}
	return next
}
