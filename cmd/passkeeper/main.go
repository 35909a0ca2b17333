package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maynagashev/passkeeper/internal/settings"
	"github.com/maynagashev/passkeeper/internal/tui"
)

const (
	logDir             = "logs"
	logFileName        = "passkeeper.log"
	logFilePermissions = 0666
	// Имя переменной окружения для пути к файлу KDBX.
	dbPathEnvVar = "PASSKEEPER_DB_PATH"
	// Путь к файлу KDBX по умолчанию.
	defaultDBPath = "passkeeper.kdbx"
	// Путь к файлу настроек по умолчанию.
	defaultSettingsPath = "passkeeper.yaml"
)

// Переменные для версии и даты сборки, устанавливаются через ldflags.
var (
	version = "dev"
	//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
	buildDate = "unknown"
	//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
	commitHash = "N/A"
)

// setupLogging настраивает логирование в файл logs/passkeeper.log.
func setupLogging(level slog.Level) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		// Без логов продолжать нет смысла
		panic("Не удалось создать директорию для логов: " + err.Error())
	}
	logPath := filepath.Join(logDir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		panic("Не удалось открыть лог-файл: " + err.Error())
	}
	// Файл остается открытым на все время работы приложения,
	// его закроет ОС при завершении процесса.

	logHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(logHandler))
	slog.Info("Логгер инициализирован", "path", logPath, "level", level.String())
}

func main() {
	versionFlag := flag.Bool("version", false, "Показать версию и дату сборки")
	kdbxPathFlag := flag.String("db", defaultDBPath, "Путь к файлу базы данных KDBX (переопределяет "+dbPathEnvVar+")")
	settingsPathFlag := flag.String("settings", defaultSettingsPath, "Путь к файлу настроек YAML")
	debugModeFlag := flag.Bool("debug", false, "Включить режим отладки TUI")

	flag.Parse()

	// Если указан флаг --version, выводим информацию и выходим
	if *versionFlag {
		// Стандартный log для вывода в консоль, slog настроен на файл
		log.SetOutput(os.Stdout)
		log.SetFlags(0)
		log.Println("PassKeeper")
		log.Printf("Version: %s", version)
		log.Printf("Build Date: %s", buildDate)
		log.Printf("Commit Hash: %s", commitHash)
		os.Exit(0)
	}

	// Настройки приложения: отсутствие файла - не ошибка
	cfg, err := settings.Load(*settingsPathFlag)

	setupLogging(cfg.SlogLevel())
	if err != nil {
		slog.Warn("Ошибка загрузки настроек, используются значения по умолчанию", "error", err)
	}

	// Определение финального пути к файлу KDBX
	finalPath := defaultDBPath
	source := "по умолчанию"

	// 1. Проверяем переменную окружения
	if envPath := os.Getenv(dbPathEnvVar); envPath != "" {
		finalPath = envPath
		source = "переменная окружения (" + dbPathEnvVar + ")"
	}

	// 2. Проверяем, был ли флаг установлен явно
	dbFlagPresent := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "db" {
			dbFlagPresent = true
		}
	})

	if dbFlagPresent {
		finalPath = *kdbxPathFlag
		source = "флаг -db"
	}

	if finalPath == "" {
		slog.Error(
			"Путь к файлу базы данных не может быть пустым",
			"проверьте", "флаг -db и переменную окружения "+dbPathEnvVar,
		)
		os.Exit(1)
	}

	slog.Info("Запуск PassKeeper",
		"db_path", finalPath,
		"source", source,
		"debug_mode", *debugModeFlag,
		"history_enabled", cfg.HistoryEnabled,
	)

	tui.Start(finalPath, *debugModeFlag, cfg)
}
