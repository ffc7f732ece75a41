package views

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/vnkhanh/survey-collector/models"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"isChoice": models.IsChoiceType,
	"date": func(t time.Time) string {
		return t.Format("02/01/2006 15:04")
	},
	"join": strings.Join,
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}

// Templates parse toàn bộ trang HTML nhúng trong binary; lỗi cú pháp thì panic lúc khởi động.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}
