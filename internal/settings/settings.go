// Пакет settings читает настройки приложения из YAML-файла.
// Файл не обязателен: при его отсутствии действуют значения по умолчанию.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию.
const (
	defaultClipboardTimeoutSec = 30
	defaultPasswordLength      = 20
	defaultLogLevel            = "info"
)

// Settings - настройки приложения. Простое чтение ключ/значение,
// без отслеживания изменений файла.
type Settings struct {
	// Сохранять ли историю версий записи при обновлении.
	HistoryEnabled bool `yaml:"history_enabled"`
	// Маскировать ли пароль и защищенные поля на экранах.
	MaskProtectedFields bool `yaml:"mask_protected_fields"`
	// Через сколько секунд очищать буфер обмена после копирования.
	ClipboardTimeoutSec int `yaml:"clipboard_timeout_sec"`
	// Длина генерируемых паролей.
	PasswordLength int `yaml:"password_length"`
	// Уровень логирования: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default возвращает настройки по умолчанию.
func Default() Settings {
	return Settings{
		HistoryEnabled:      true,
		MaskProtectedFields: true,
		ClipboardTimeoutSec: defaultClipboardTimeoutSec,
		PasswordLength:      defaultPasswordLength,
		LogLevel:            defaultLogLevel,
	}
}

// Load читает настройки из YAML-файла. Отсутствующий файл - не ошибка:
// возвращаются значения по умолчанию. Отсутствующие в файле ключи
// заполняются значениями по умолчанию при декодировании поверх них.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("Файл настроек не найден, используются значения по умолчанию", "path", path)
			return s, nil
		}
		return s, fmt.Errorf("ошибка чтения файла настроек '%s': %w", path, err)
	}

	if err = yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("ошибка разбора файла настроек '%s': %w", path, err)
	}

	slog.Info("Настройки загружены", "path", path)
	return s, nil
}

// SlogLevel переводит текстовый уровень логирования в slog.Level.
// Неизвестный уровень дает info.
func (s Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
