package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var headerColor = color.New(color.Bold)

// Render writes the model as plain text, one header per group and one line
// per item:
//
//   - origin:
//   - [Kind] (action, action) title url
//
// Items without a URL (meetings) omit the trailing URL. Rendering is a
// direct serialization of the model; it never reorders or drops anything.
func Render(w io.Writer, m *Model) error {
	if m.Empty() {
		_, err := fmt.Fprintln(w, "No activity found for this period.")
		return err
	}

	for _, g := range m.Groups {
		if _, err := headerColor.Fprintf(w, "- %s:\n", g.Origin); err != nil {
			return err
		}
		for _, it := range g.Items {
			line := fmt.Sprintf("  * [%s] (%s) %s", it.Kind, strings.Join(it.Actions, ", "), it.Title)
			if it.URL != "" {
				line += " " + it.URL
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
