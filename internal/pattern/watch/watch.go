// Package watch пересобирает паттерн при изменении файлов настроек или
// фигур и пишет результат на диск.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"pattern-mapper/internal/pattern/loader"
	"pattern-mapper/internal/pattern/models"

	"github.com/fsnotify/fsnotify"
)

// ============================================================
// File Watcher
// ============================================================

const DefaultDebounce = 200 * time.Millisecond

type Watcher struct {
	SettingsPath string
	ShapesPath   string
	OutputPath   string
	// Пачка событий дает одну перезагрузку
	Debounce time.Duration

	builder *loader.Builder
	logger  *log.Logger
}

// New следит за settingsPath и shapesPath. Пустой outputPath =
// <shapes>.pattern.json.
func New(builder *loader.Builder, logger *log.Logger, settingsPath, shapesPath, outputPath string) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	if outputPath == "" {
		outputPath = shapesPath + ".pattern.json"
	}
	return &Watcher{
		SettingsPath: filepath.Clean(settingsPath),
		ShapesPath:   filepath.Clean(shapesPath),
		OutputPath:   filepath.Clean(outputPath),
		Debounce:     DefaultDebounce,
		builder:      builder,
		logger:       logger,
	}
}

// Reload читает оба файла, пересобирает и пишет результат.
func (w *Watcher) Reload() (*loader.Output, error) {
	settings, err := w.readSettings()
	if err != nil {
		return nil, err
	}
	shapes, err := w.readShapes()
	if err != nil {
		return nil, err
	}
	load, err := w.builder.Load(settings, shapes)
	if err != nil {
		return nil, fmt.Errorf("build pattern: %w", err)
	}
	out := load.Output(w.logger)
	if err := writeJSON(w.OutputPath, out); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	w.logger.Printf("[WATCH] load %s written to %s", load.ID, w.OutputPath)
	return out, nil
}

// Run собирает сразу и затем после каждого изменения файлов, пока ctx
// не завершен. При ошибке старый результат остается.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Каталоги, а не файлы: редакторы часто сохраняют через rename
	dirs := map[string]bool{
		filepath.Dir(w.SettingsPath): true,
		filepath.Dir(w.ShapesPath):   true,
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.reloadLogged()

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.Debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("[WATCH] watcher error: %v", err)
		case <-timer.C:
			w.reloadLogged()
		}
	}
}

func (w *Watcher) reloadLogged() {
	if _, err := w.Reload(); err != nil {
		w.logger.Printf("[WATCH] reload failed: %v", err)
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == w.SettingsPath || name == w.ShapesPath
}

func (w *Watcher) readSettings() (*models.PatternSettings, error) {
	data, err := os.ReadFile(w.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return models.ParseSettingsAs(models.SettingsFormat(w.SettingsPath), data)
}

// readShapes принимает массив фигур или объект с ключом "shapes" в любом
// из форматов настроек.
func (w *Watcher) readShapes() ([]*models.ShapeInfo, error) {
	data, err := os.ReadFile(w.ShapesPath)
	if err != nil {
		return nil, fmt.Errorf("read shapes: %w", err)
	}
	jsonData, err := models.ToJSON(models.SettingsFormat(w.ShapesPath), data)
	if err != nil {
		return nil, fmt.Errorf("decode shapes: %w", err)
	}
	if len(jsonData) == 0 {
		return nil, nil
	}
	var shapes []*models.ShapeInfo
	if err := json.Unmarshal(jsonData, &shapes); err == nil {
		return shapes, nil
	}
	var wrapped struct {
		Shapes []*models.ShapeInfo `json:"shapes"`
	}
	if err := json.Unmarshal(jsonData, &wrapped); err != nil {
		return nil, fmt.Errorf("decode shapes: %w", err)
	}
	return wrapped.Shapes, nil
}

// writeJSON атомарно заменяет файл.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
