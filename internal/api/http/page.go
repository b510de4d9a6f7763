package http

import (
	"embed"
	"html/template"

	"github.com/GriffinCanCode/PostGen/backend/internal/domain/post"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type pageData struct {
	Language  string
	Tones     []post.Option
	Platforms []post.Option
}
