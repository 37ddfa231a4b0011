package common

import "strings"

// ToBool interprets the loose boolean forms accepted from clients:
// true/false, 0/1 and their string spellings. ok is false for anything else.
func ToBool(v any) (value bool, ok bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return boolFromInt(int64(b))
	case int64:
		return boolFromInt(b)
	case float64:
		// encoding/json decodes numbers as float64
		if b == 0 || b == 1 {
			return b == 1, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
	}
	return false, false
}

func boolFromInt(i int64) (bool, bool) {
	if i == 0 || i == 1 {
		return i == 1, true
	}
	return false, false
}
