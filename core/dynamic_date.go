package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDynamicDate parses a dynamic date string in the format "$date:format:unit:offset".
// Example: "$date:day:day:-1" -> yesterday in "2006-01-02" format.
// format is one of day, month, year, datetime, compact, or a Go time layout.
// Strings without the "$date:" prefix are returned unchanged.
func ParseDynamicDate(expression string, baseTime time.Time) (string, error) {
	if !strings.HasPrefix(expression, "$date:") {
		return expression, nil
	}

	// Split from the right so a Go layout containing ':' survives.
	body := strings.TrimPrefix(expression, "$date:")
	last := strings.LastIndex(body, ":")
	if last < 0 {
		return "", fmt.Errorf("invalid dynamic date format: %s", expression)
	}
	offsetStr := body[last+1:]
	body = body[:last]
	mid := strings.LastIndex(body, ":")
	if mid < 0 {
		return "", fmt.Errorf("invalid dynamic date format: %s", expression)
	}
	format, unit := body[:mid], body[mid+1:]

	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		return "", fmt.Errorf("invalid offset in dynamic date: %s", expression)
	}

	targetTime := baseTime
	switch unit {
	case "day":
		targetTime = targetTime.AddDate(0, 0, offset)
	case "month":
		targetTime = targetTime.AddDate(0, offset, 0)
	case "year":
		targetTime = targetTime.AddDate(offset, 0, 0)
	default:
		return "", fmt.Errorf("unsupported unit in dynamic date: %s", unit)
	}

	return formatTime(targetTime, format), nil
}

func formatTime(t time.Time, format string) string {
	switch format {
	case "day":
		return t.Format("2006-01-02")
	case "month":
		return t.Format("2006-01")
	case "year":
		return t.Format("2006")
	case "datetime":
		return t.Format("2006-01-02 15:04:05")
	case "compact":
		return t.Format("20060102")
	case "":
		return t.Format("2006-01-02")
	default:
		return t.Format(format)
	}
}

// resolveParameters expands every dynamic date in params against now.
func resolveParameters(params map[string]string, now time.Time) (map[string]string, error) {
	resolved := make(map[string]string, len(params))
	for k, v := range params {
		val, err := ParseDynamicDate(v, now)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		resolved[k] = val
	}
	return resolved, nil
}

func replacePlaceholders(input string, params map[string]string) string {
	output := input
	for k, v := range params {
		output = strings.ReplaceAll(output, "${"+k+"}", v)
	}
	return output
}
