// Package markdown loads front-matter Markdown documents and renders their
// bodies to HTML with goldmark.
package markdown
