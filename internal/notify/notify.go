// Package notify publishes the human-readable "new file" notification.
package notify

import (
	"context"
	"fmt"
	"time"
)

const (
	// Subject is the static subject attached to every notification.
	Subject = "New file generated"
	// ProcessLabel identifies the producing process in the message body.
	ProcessLabel = "Automatic file generation"
)

// Publisher delivers a message to every subscriber of a topic.
type Publisher interface {
	Publish(ctx context.Context, subject, body string) (messageID string, err error)
}

// Message carries the fields rendered into the notification body.
type Message struct {
	FileName  string
	Lines     int
	Bucket    string
	Timestamp time.Time
}

// Body renders the fixed-format notification text.
func (m Message) Body() string {
	return fmt.Sprintf(`New Report Generated
-------------------
File Name: %s
Line Count: %d
Timestamp: %s

Additional Details:
- Bucket: %s
- Process: %s
`, m.FileName, m.Lines, m.Timestamp.Format("2006-01-02 15:04:05.000000"), m.Bucket, ProcessLabel)
}
