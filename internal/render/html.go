package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
)

const pageStyle = `body{font-family:Helvetica,Arial,sans-serif;max-width:800px;margin:2em auto;color:#222;line-height:1.4}
h1{margin-bottom:.2em}
h2{text-transform:uppercase;font-size:1.05em;border-bottom:1px solid #999;padding-bottom:.1em;margin-top:1.4em}
img{max-width:120px;border-radius:4px}
ul{margin-top:.2em}`

// HTML renders doc as a standalone HTML page.
func HTML(doc Document) (string, error) {
	title := "Résumé"
	if doc.Personal.Name != "" {
		title = doc.Personal.Name + " – Résumé"
	}
	return page(title, Markdown(doc))
}

// page converts md with goldmark and wraps it in a minimal document.
// Raw HTML in md is not passed through.
func page(title, md string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.New().Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	out.WriteString(html.EscapeString(title))
	out.WriteString("</title>\n<style>\n")
	out.WriteString(pageStyle)
	out.WriteString("\n</style>\n</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.String(), nil
}
