package store

import (
	"fmt"
	"strconv"
)

// ParseDType takes a numpy-style string like "<f8", "<i4", "|O" and returns
// a simplified name (e.g., "float64", "int32", "object") and the element
// byte size. Object datasets carry no fixed element size and return 0; in
// the dump layout they are serialized as JSON string arrays.
// Big-endian (>) types are rejected.
func ParseDType(s string) (string, int, error) {
	if s == "|O" {
		return "object", 0, nil
	}
	if len(s) < 3 {
		return "", 0, fmt.Errorf("invalid dtype: %s", s)
	}

	endian := s[0]
	if endian == '>' {
		return "", 0, fmt.Errorf("big-endian types are unsupported: %s", s)
	}

	kind := s[1]
	sizeStr := s[2:]

	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid size in dtype: %s", s)
	}

	switch kind {
	case 'b':
		return "bool", size, nil
	case 'i':
		return fmt.Sprintf("int%d", size*8), size, nil
	case 'u':
		return fmt.Sprintf("uint%d", size*8), size, nil
	case 'f':
		return fmt.Sprintf("float%d", size*8), size, nil
	case 'c':
		return fmt.Sprintf("complex%d", size*8), size, nil
	default:
		return "", 0, fmt.Errorf("unsupported dtype kind: %c in %s", kind, s)
	}
}
