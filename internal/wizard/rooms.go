package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// GenerateRoomNumbers returns count room numbers starting at start. A numeric
// start keeps its zero padding ("001" -> "001","002"); anything else is
// suffixed ("A" -> "A-1","A-2").
func GenerateRoomNumbers(start string, count int) []string {
	start = strings.TrimSpace(start)
	if start == "" || count <= 0 {
		return nil
	}
	out := make([]string, 0, count)
	if n, err := strconv.Atoi(start); err == nil && isDigits(start) {
		for i := 0; i < count; i++ {
			out = append(out, fmt.Sprintf("%0*d", len(start), n+i))
		}
		return out
	}
	for i := 1; i <= count; i++ {
		out = append(out, fmt.Sprintf("%s-%d", start, i))
	}
	return out
}

// SuggestedStartingRoom first room number for a floor label: "G" and "0" give
// "001", a label with a leading number n gives "n01".
func SuggestedStartingRoom(floorLabel string) string {
	label := strings.TrimSpace(floorLabel)
	if label == "G" || label == "0" {
		return "001"
	}
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end == 0 {
		return "001"
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return "001"
	}
	return fmt.Sprintf("%d01", n)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
