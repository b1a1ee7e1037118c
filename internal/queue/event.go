// Package queue defines the visitor events exchanged over the message broker
// and the consumer that turns them into an audit log.
package queue

import "fmt"

// VisitorRegisteredQueue is both the RabbitMQ queue name and the default
// Pub/Sub topic.
const VisitorRegisteredQueue = "visitor.registered"

// VisitorRegisteredEvent is published after a visitor record is stored.  It
// carries enough for downstream consumers to log or notify without reading
// the primary database.
type VisitorRegisteredEvent struct {
    VisitorID    uint64 `json:"visitor_id"`
    MemberID     uint64 `json:"member_id"`
    WorkbookID   uint64 `json:"workbook_id"`
    WorkbookName string `json:"workbook_name"`
    Name         string `json:"name"`
    InTime       string `json:"in_time,omitempty"`
    Photo        string `json:"photo,omitempty"`
    Signature    string `json:"signature,omitempty"`
    RegisteredAt string `json:"registered_at"`
}

// LogLine renders the event as one line of logs/visitor.log.
func (ev VisitorRegisteredEvent) LogLine() string {
    return fmt.Sprintf("[%s] Visitor registered | visitor_id=%d | member_id=%d | workbook_id=%d | workbook=%q | name=%q | in_time=%q | photo=%t | signature=%t\n",
        ev.RegisteredAt, ev.VisitorID, ev.MemberID, ev.WorkbookID, ev.WorkbookName, ev.Name, ev.InTime,
        ev.Photo != "", ev.Signature != "")
}
