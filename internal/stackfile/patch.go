// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package stackfile rewrites the image of a single service in a compose-style
// stack file. The file is treated as lines of text, not parsed as YAML: a
// service is found by its indented "<name>:" heading and the line right after
// the heading must be its image key.
package stackfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/distribution/reference"
)

const imageKey = "image:"

type ServiceNotFoundError struct {
	Service string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %s definition was not found in stack yaml", e.Service)
}

// ImageKeyMissingError reports the line that should have held the image. When
// the heading is the last line of the file, Line is the heading itself.
type ImageKeyMissingError struct {
	Service   string
	Line      int
	EndOfFile bool
}

func (e *ImageKeyMissingError) Error() string {
	if e.EndOfFile {
		return fmt.Sprintf("service %s definition at line %d ends the file without an `image` key, can't proceed with update", e.Service, e.Line)
	}
	return fmt.Sprintf("first line of service %s definition was not `image` key (line %d), can't proceed with update", e.Service, e.Line)
}

// ValidateImage checks that image can be written on a single image line.
// Values using compose interpolation, like shop/web:${TAG}, are resolved by
// Portainer and only checked for whitespace; anything else must be a valid
// image reference.
func ValidateImage(image string) error {
	if strings.TrimSpace(image) == "" {
		return fmt.Errorf("image must not be blank")
	}
	if strings.ContainsAny(image, " \t\r\n") {
		return fmt.Errorf("image must not contain whitespace")
	}
	if strings.Contains(image, "$") {
		return nil
	}
	if _, err := reference.ParseNormalizedNamed(image); err != nil {
		return err
	}

	return nil
}

// FindAndReplaceImage replaces the image of the first service heading matching
// service and returns the new text together with the image it replaced.
func FindAndReplaceImage(content, service, newImage string) (string, string, error) {
	lines := strings.Split(content, "\n")

	idx, err := imageLine(lines, service)
	if err != nil {
		return "", "", err
	}

	prefix, previous, crlf := splitImageLine(lines[idx])
	lines[idx] = prefix + imageKey + " " + newImage + crlf

	return strings.Join(lines, "\n"), previous, nil
}

// ExtractImage returns the image declared by the first service heading
// matching service.
func ExtractImage(content, service string) (string, error) {
	lines := strings.Split(content, "\n")

	idx, err := imageLine(lines, service)
	if err != nil {
		return "", err
	}

	_, image, _ := splitImageLine(lines[idx])
	return image, nil
}

func headingPattern(service string) *regexp.Regexp {
	return regexp.MustCompile(`^\s+` + regexp.QuoteMeta(service) + `:`)
}

// imageLine returns the index of the image line following the first heading
// of service.
func imageLine(lines []string, service string) (int, error) {
	heading := headingPattern(service)

	for i, line := range lines {
		if !heading.MatchString(line) {
			continue
		}

		next := i + 1
		if next >= len(lines) {
			return 0, &ImageKeyMissingError{Service: service, Line: i + 1, EndOfFile: true}
		}
		if !strings.Contains(lines[next], imageKey) {
			return 0, &ImageKeyMissingError{Service: service, Line: next + 1}
		}

		return next, nil
	}

	return 0, &ServiceNotFoundError{Service: service}
}

// splitImageLine splits an image line at its first image key. A trailing
// carriage return is handed back separately so it survives the rewrite.
func splitImageLine(line string) (prefix, image, crlf string) {
	if strings.HasSuffix(line, "\r") {
		crlf = "\r"
		line = strings.TrimSuffix(line, "\r")
	}

	prefix, image, _ = strings.Cut(line, imageKey)
	return prefix, strings.TrimSpace(image), crlf
}
