package roll

import "fmt"

// Orientation is a quarter-turn rotation applied to an image before export.
// Rotations compose by modular addition, so four left turns are a no-op.
type Orientation uint8

const (
	Normal Orientation = iota
	Rotated90
	Rotated180
	Rotated270
)

var orientationNames = [...]string{"Normal", "Rotated90", "Rotated180", "Rotated270"}

// Rotate returns the composition of o with a further rotation.
func (o Orientation) Rotate(angle Orientation) Orientation {
	return (o + angle) % 4
}

// String implements fmt.Stringer with the names used in stored metadata.
func (o Orientation) String() string {
	return orientationNames[o%4]
}

// MarshalJSON encodes the orientation by name, matching stored metadata.
func (o Orientation) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", o.String())), nil
}

// UnmarshalJSON decodes an orientation name.
func (o *Orientation) UnmarshalJSON(data []byte) error {
	for i, name := range orientationNames {
		if string(data) == fmt.Sprintf("%q", name) {
			*o = Orientation(i)
			return nil
		}
	}
	return fmt.Errorf("unknown orientation: %s", data)
}
