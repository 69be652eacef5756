package domain

import (
	"errors"
	"fmt"
)

// ShareType room occupancy category
type ShareType string

const (
	ShareSingle ShareType = "single"
	ShareDouble ShareType = "double"
	ShareTriple ShareType = "triple"
)

var ErrInvalidShareType = errors.New("invalid share type")

// BedCount number of beds a room of this share type holds; 0 when unknown.
func (s ShareType) BedCount() int {
	switch s {
	case ShareSingle:
		return 1
	case ShareDouble:
		return 2
	case ShareTriple:
		return 3
	default:
		return 0
	}
}

func (s ShareType) Valid() bool {
	return s.BedCount() > 0
}

// ShareTypeForBedCount maps a bed count back to a share type.
// Counts above three collapse to triple.
func ShareTypeForBedCount(n int) (ShareType, error) {
	switch {
	case n == 1:
		return ShareSingle, nil
	case n == 2:
		return ShareDouble, nil
	case n >= 3:
		return ShareTriple, nil
	default:
		return "", fmt.Errorf("%w: bed count %d", ErrInvalidShareType, n)
	}
}

// GenerateBeds returns the bed list "B1".."Bn" for a share type, all unoccupied.
func GenerateBeds(s ShareType) ([]Bed, error) {
	n := s.BedCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShareType, s)
	}
	beds := make([]Bed, 0, n)
	for i := 1; i <= n; i++ {
		beds = append(beds, Bed{ID: fmt.Sprintf("B%d", i)})
	}
	return beds, nil
}
