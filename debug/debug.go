// Package debug holds environment-driven debug switches for the parse
// pipeline. Set QMD_DEBUG_SCAN, QMD_DEBUG_PARSE, QMD_DEBUG_BUILD or
// QMD_DEBUG_FILTER to a truthy value to trace the corresponding stage
// on stderr.
package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Scan   bool
	Parse  bool
	Build  bool
	Filter bool
}

var d *debug

func init() {
	d = &debug{}
	d.Scan = boolEnv("QMD_DEBUG_SCAN")
	d.Parse = boolEnv("QMD_DEBUG_PARSE")
	d.Build = boolEnv("QMD_DEBUG_BUILD")
	d.Filter = boolEnv("QMD_DEBUG_FILTER")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Scan() bool {
	return d.Scan
}
func Parse() bool {
	return d.Parse
}
func Build() bool {
	return d.Build
}
func Filter() bool {
	return d.Filter
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
