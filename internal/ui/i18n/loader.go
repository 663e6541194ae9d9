// loader.go — загрузка каталогов переводов из встроенной файловой системы.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
)

// localeFS — встроенные JSON-каталоги переводов (locales/<lang>.json).
//
//go:embed locales/*.json
var localeFS embed.FS

// Load создаёт Bundle и загружает в него встроенные каталоги.
func Load(logger *slog.Logger) (*Bundle, error) {
	bundle := NewBundle(logger)
	if err := LoadFromFS(bundle, localeFS, logger); err != nil {
		return nil, err
	}
	return bundle, nil
}

// LoadFromFS загружает все каталоги locales/*.json из fsys.
// Имя файла без расширения — код языка. Каталог языка по умолчанию обязателен.
func LoadFromFS(bundle *Bundle, fsys fs.FS, logger *slog.Logger) error {
	files, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return fmt.Errorf("i18n: поиск каталогов: %w", err)
	}

	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("i18n: не удалось прочитать %s: %w", file, err)
		}

		lang := strings.TrimSuffix(path.Base(file), ".json")
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}

	if !bundle.Has(DefaultLang) {
		return fmt.Errorf("i18n: нет каталога языка по умолчанию %q", DefaultLang)
	}

	logger.Info("i18n каталоги загружены", slog.Any("languages", bundle.Languages()))
	return nil
}
