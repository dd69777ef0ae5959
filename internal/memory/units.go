package memory

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidMemoryUnit is returned when a memory quantity cannot be parsed.
var ErrInvalidMemoryUnit = errors.New("invalid memory unit")

var memoryPattern = regexp.MustCompile(`^([0-9]+)([kKmMgG]?)$`)

const (
	kibibyte int64 = 1 << 10
	mebibyte int64 = 1 << 20
	gibibyte int64 = 1 << 30
)

// ParseMemory converts a human readable memory quantity into bytes.
//
// Accepted forms are a plain byte count ("1048576") or an integer followed by
// a single k, m or g suffix in either case ("512m", "2G"). Suffixes use powers
// of 1024, which is how the JVM reads -Xms and -Xmx.
func ParseMemory(value string) (int64, error) {
	match := memoryPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMemoryUnit, value)
	}

	number, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidMemoryUnit, value, err)
	}

	var scale int64 = 1
	switch strings.ToLower(match[2]) {
	case "k":
		scale = kibibyte
	case "m":
		scale = mebibyte
	case "g":
		scale = gibibyte
	}

	if number > 0 && number > (1<<63-1)/scale {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidMemoryUnit, value)
	}
	return number * scale, nil
}

// ParseQuantity parses a Kubernetes binary quantity such as "2Gi" by dropping
// the trailing "i" and handing the rest to ParseMemory, so both sides of the
// heap comparison go through the same parser.
func ParseQuantity(quantity string) (int64, error) {
	return ParseMemory(strings.TrimSuffix(strings.TrimSpace(quantity), "i"))
}
