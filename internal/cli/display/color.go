// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

import (
	gkcolor "github.com/gookit/color"
)

var (
	gold = gkcolor.RGB(181, 181, 91)
	grey = gkcolor.RGB(138, 138, 138)
)

func Gold(s string) string {
	return gold.Sprint(s)
}

func Green(s string) string {
	return gkcolor.FgGreen.Sprint(s)
}

func Grey(s string) string {
	return grey.Sprint(s)
}

func LightBlue(s string) string {
	return gkcolor.HiBlue.Sprint(s)
}

func Red(s string) string {
	return gkcolor.FgRed.Sprint(s)
}
func Redf(format string, args ...any) string {
	return gkcolor.FgRed.Sprintf(format, args...)
}

// Yellow marks work in progress.
func Yellow(s string) string {
	return gkcolor.FgYellow.Sprint(s)
}
