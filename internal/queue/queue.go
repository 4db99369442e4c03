// Package queue sends the "<name>|<lines>" message for each uploaded file.
package queue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates the file name from the line count in a message body.
const Delimiter = "|"

// Sender delivers a message body to a point-to-point queue.
type Sender interface {
	Send(ctx context.Context, body string) error
}

// FormatBody joins name and lines with Delimiter.
func FormatBody(name string, lines int) string {
	return name + Delimiter + strconv.Itoa(lines)
}

// ParseBody splits a body produced by FormatBody.
func ParseBody(body string) (string, int, error) {
	idx := strings.LastIndex(body, Delimiter)
	if idx <= 0 || idx == len(body)-1 {
		return "", 0, fmt.Errorf("malformed message body %q", body)
	}
	lines, err := strconv.Atoi(body[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed line count in %q: %w", body, err)
	}
	return body[:idx], lines, nil
}
