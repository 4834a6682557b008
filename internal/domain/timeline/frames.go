package timeline

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// ErrNoFrameNumber is returned when a frame name carries no digits.
var ErrNoFrameNumber = errors.New("no frame number in name")

// FrameToSeconds converts a frame number to seconds, rounded to hundredths.
// It is monotonic in frame and returns 0 for a non-positive fps.
func FrameToSeconds(frame int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return math.Round(float64(frame)/fps*100) / 100
}

// SecondsToFrame is the nearest frame number for a time offset.
func SecondsToFrame(sec, fps float64) int {
	if fps <= 0 {
		return 0
	}
	return int(math.Round(sec * fps))
}

// ParseFrameNumber extracts the frame number from names such as
// "frame_0012.jpg" or "clip/frame-12.png". The last digit run of the base
// name wins.
func ParseFrameNumber(name string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	end := strings.LastIndexFunc(base, unicode.IsDigit)
	if end < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoFrameNumber, name)
	}
	start := end
	for start > 0 && unicode.IsDigit(rune(base[start-1])) {
		start--
	}
	n, err := strconv.Atoi(base[start : end+1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrNoFrameNumber, name, err)
	}
	return n, nil
}
