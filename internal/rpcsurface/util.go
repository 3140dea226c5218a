package rpcsurface

import "time"

func nowUnix() int64 {
	return time.Now().Unix()
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
