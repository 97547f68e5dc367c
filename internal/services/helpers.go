package services

import "strconv"

func choose(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func itoa(n int) string { return strconv.Itoa(n) }
