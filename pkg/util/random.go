package util

import (
	"math/rand"
)

// EventColors is the palette events are drawn from when no color is given
var EventColors = []string{"green", "blue", "pink", "purple", "orange", "yellow", "red"}

// RandomEventColor picks a random color from the event palette
func RandomEventColor() string {
	return EventColors[rand.Intn(len(EventColors))]
}
