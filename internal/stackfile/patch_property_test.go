// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build property

package stackfile

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// service names never collide with the keys used inside a service body
var serviceNameGen = rapid.StringMatching(`[a-z][a-z0-9_-]{0,12}`).Filter(func(name string) bool {
	return name != "image" && name != "restart"
})

var (
	imageGen  = rapid.StringMatching(`[a-z0-9]+(/[a-z0-9]+)?:[a-z0-9.]{1,8}`)
	indentGen = rapid.SampledFrom([]string{" ", "  ", "    ", "\t"})
)

type generatedFile struct {
	content   string
	imageLine int
	image     string
}

// composeGen builds a stack file with a handful of services, exactly one of
// them named target.
func composeGen(target string) *rapid.Generator[generatedFile] {
	return rapid.Custom(func(t *rapid.T) generatedFile {
		others := rapid.SliceOfNDistinct(serviceNameGen, 0, 5, rapid.ID[string]).
			Filter(func(names []string) bool {
				for _, n := range names {
					if n == target {
						return false
					}
				}
				return true
			}).
			Draw(t, "others")
		position := rapid.IntRange(0, len(others)).Draw(t, "position")
		indent := indentGen.Draw(t, "indent")

		names := append([]string{}, others[:position]...)
		names = append(names, target)
		names = append(names, others[position:]...)

		lines := []string{"version: \"3.8\"", "services:"}
		var gf generatedFile
		for i, name := range names {
			image := imageGen.Draw(t, fmt.Sprintf("image%d", i))
			lines = append(lines, indent+name+":")
			if name == target {
				gf.imageLine = len(lines)
				gf.image = image
			}
			lines = append(lines,
				indent+indent+"image: "+image,
				indent+indent+"restart: unless-stopped",
			)
		}
		if rapid.Bool().Draw(t, "trailingNewline") {
			lines = append(lines, "")
		}

		gf.content = strings.Join(lines, "\n")
		return gf
	})
}

func TestFindAndReplaceImage_OnlyImageLineChanges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		target := serviceNameGen.Draw(t, "target")
		gf := composeGen(target).Draw(t, "file")
		newImage := imageGen.Draw(t, "newImage")

		out, previous, err := FindAndReplaceImage(gf.content, target, newImage)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if previous != gf.image {
			t.Fatalf("previous image %q, expected %q", previous, gf.image)
		}

		before := strings.Split(gf.content, "\n")
		after := strings.Split(out, "\n")
		if len(before) != len(after) {
			t.Fatalf("line count changed from %d to %d", len(before), len(after))
		}
		for i := range before {
			if i == gf.imageLine {
				continue
			}
			if before[i] != after[i] {
				t.Fatalf("line %d changed: %q -> %q", i+1, before[i], after[i])
			}
		}
	})
}

func TestFindAndReplaceImage_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		target := serviceNameGen.Draw(t, "target")
		gf := composeGen(target).Draw(t, "file")
		newImage := imageGen.Draw(t, "newImage")

		out, _, err := FindAndReplaceImage(gf.content, target, newImage)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		image, err := ExtractImage(out, target)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if image != newImage {
			t.Fatalf("extracted %q, expected %q", image, newImage)
		}
	})
}

func TestFindAndReplaceImage_AbsentServiceFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		target := serviceNameGen.Draw(t, "target")
		gf := composeGen(target).Draw(t, "file")
		missing := target + "-missing"

		out, _, err := FindAndReplaceImage(gf.content, missing, "app:1")
		if err == nil {
			t.Fatalf("expected an error for service %q", missing)
		}
		if out != "" {
			t.Fatalf("expected no output, got %q", out)
		}
	})
}
