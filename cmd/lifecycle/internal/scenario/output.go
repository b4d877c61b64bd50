package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ANSI colors for event names in terminal output.
const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorMagenta = "\x1b[35m"
)

func eventColor(event string) string {
	switch event {
	case "acquire", "mount":
		return colorGreen
	case "release", "destroy":
		return colorRed
	case "defer", "collapse":
		return colorYellow
	case "fail", "discard":
		return colorMagenta
	default:
		return ""
	}
}

// FormatEntry renders one trace entry as a single line. With color set,
// the event name is wrapped in an ANSI color.
func FormatEntry(e Entry, color bool) string {
	event := e.Event
	if c := eventColor(event); color && c != "" {
		event = c + event + colorReset
	}
	parts := []string{fmt.Sprintf("f%d", e.Frame), e.Component, event}
	if e.Mount > 0 {
		parts = append(parts, fmt.Sprintf("mount=%d", e.Mount))
	}
	if e.Resource != "" {
		parts = append(parts, "resource="+e.Resource)
	}
	if e.Reason != "" {
		parts = append(parts, "reason="+e.Reason)
	}
	if e.Count > 0 {
		parts = append(parts, fmt.Sprintf("count=%d", e.Count))
	}
	if e.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", e.Error))
	}
	return strings.Join(parts, " ")
}

// WriteText writes a human-readable report of res.
func WriteText(w io.Writer, res *Result, color bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s run %s project %s", res.Scenario, res.RunID, res.Project)
	if res.Module != "" {
		fmt.Fprintf(&b, " module %s", res.Module)
	}
	b.WriteByte('\n')
	for _, e := range res.Trace {
		b.WriteString(FormatEntry(e, color))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "frames: %d\n", res.Frames)
	fmt.Fprintf(&b, "released: %s\n", listOrNone(res.Released))
	fmt.Fprintf(&b, "live: %s\n", listOrNone(res.Live))
	if res.Fatal != "" {
		fmt.Fprintf(&b, "fatal: %s\n", res.Fatal)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(&b, "FAIL %s\n", f)
	}
	if res.Passed() {
		b.WriteString("result: pass\n")
	} else {
		b.WriteString("result: fail\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
