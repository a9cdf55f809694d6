// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package matrixsink

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/bureau-foundation/herald/lib/render"
	"github.com/bureau-foundation/herald/messaging"
)

// markdown renders descriptions. Raw HTML in producer text is dropped;
// single newlines become line breaks.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
)

// Content converts a unit to Matrix message content.
func Content(unit render.Unit) (messaging.MessageContent, error) {
	switch unit := unit.(type) {
	case render.PlainUnit:
		return messaging.NewTextMessage(unit.Text), nil
	case render.RichUnit:
		formatted, err := richHTML(unit)
		if err != nil {
			return messaging.MessageContent{}, err
		}
		return messaging.NewHTMLNotice(richText(unit), formatted), nil
	default:
		return messaging.MessageContent{}, fmt.Errorf("matrixsink: unsupported unit %T", unit)
	}
}

// richText is the plain-text body shown by clients without HTML support.
func richText(unit render.RichUnit) string {
	var text strings.Builder
	text.WriteString(unit.Title)
	if unit.Author != "" {
		text.WriteString(" [" + unit.Author + "]")
	}
	text.WriteString("\n" + unit.Description)
	if unit.Detail != "" {
		text.WriteString("\n\n" + unit.DetailName + ":\n" + unit.Detail)
	}
	return text.String()
}

func richHTML(unit render.RichUnit) (string, error) {
	var out bytes.Buffer

	out.WriteString("<p>")
	if unit.Color != "" {
		fmt.Fprintf(&out, `<font data-mx-color="%s"><strong>%s</strong></font>`,
			html.EscapeString(unit.Color), html.EscapeString(unit.Title))
	} else {
		fmt.Fprintf(&out, "<strong>%s</strong>", html.EscapeString(unit.Title))
	}
	if unit.Author != "" {
		fmt.Fprintf(&out, " <em>%s</em>", html.EscapeString(unit.Author))
	}
	out.WriteString("</p>\n")

	if err := markdown.Convert([]byte(unit.Description), &out); err != nil {
		return "", fmt.Errorf("matrixsink: rendering description: %w", err)
	}

	if unit.Detail != "" {
		fmt.Fprintf(&out, "<p><strong>%s</strong></p>\n", html.EscapeString(unit.DetailName))
		language := ""
		if unit.DetailStructured {
			language = ` class="language-yaml"`
		}
		fmt.Fprintf(&out, "<pre><code%s>%s</code></pre>\n", language, html.EscapeString(unit.Detail))
	}
	return strings.TrimSpace(out.String()), nil
}
