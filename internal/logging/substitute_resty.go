// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
)

type RestyLogger struct {
}

func (l *RestyLogger) Debugf(format string, args ...any) {
	slog.Debug(fmt.Sprintf("Resty: "+format, args...))
}

func (l *RestyLogger) Warnf(format string, args ...any) {
	slog.Warn(fmt.Sprintf("Resty: "+format, args...))
}

func (l *RestyLogger) Errorf(format string, args ...any) {
	slog.Error(fmt.Sprintf("Resty: "+format, args...))
}

// LogAPICall records a finished API round trip at debug level.
func LogAPICall(ctx context.Context, method, url string, statusCode int, duration time.Duration) {
	slog.DebugContext(ctx, fmt.Sprintf("%s %s", color.CyanString(method), url),
		"status", statusColor(statusCode),
		"duration", duration)
}

// LogAPIError records a request that never got a response.
func LogAPIError(ctx context.Context, method, url string, err error) {
	slog.ErrorContext(ctx, fmt.Sprintf("%s %s", color.CyanString(method), url),
		"error", color.RedString("%v", err))
}

func statusColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return color.GreenString("%d", statusCode)
	case statusCode >= 400:
		return color.RedString("%d", statusCode)
	default:
		return color.YellowString("%d", statusCode)
	}
}
