package handdrawn

import "fmt"

const (
	greyMin = 0xe4
	greyMax = 0xf6
)

// greyForID picks a light grey fill for a card, stable per slot.
func greyForID(id string) string {
	v := greyMin + int(hash(id, 7)%uint64(greyMax-greyMin+1))
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}
