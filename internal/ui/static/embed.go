// Пакет static — встроенные статические ресурсы Production Plan UI:
// стили (включая классы цветов монтажёров editor-color-N) и selection.js,
// снимающий выбор записей при клике вне таблицы.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

// content — встроенная файловая система со всеми статическими ресурсами.
// Включает поддиректории css/ и js/.
//
//go:embed css/output.css js/*.js
var content embed.FS

// FileSystem возвращает http.FileSystem для обработки запросов к /static/*.
// Файлы доступны по путям вида /static/css/output.css, /static/js/selection.js и т.д.
func FileSystem() http.FileSystem {
	return http.FS(content)
}

// FS возвращает fs.FS для прямого доступа к встроенным файлам.
func FS() fs.FS {
	return content
}
