package statistic

import (
	"fmt"
	"minelens/internal/health"
	"minelens/internal/providers"
	"minelens/internal/statistic/interfaces"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

const snapshotVersion = 1

// TelemetryStore is the state the file manager persists.
type TelemetryStore interface {
	Snapshot() *health.TelemetrySnapshot
	Restore(s *health.TelemetrySnapshot)
}

type snapshotFile struct {
	Version   int                       `json:"version"`
	SavedAt   time.Time                 `json:"savedAt"`
	Telemetry *health.TelemetrySnapshot `json:"telemetry"`
}

type FileManager struct {
	store      TelemetryStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store TelemetryStore, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	jsonData, err := json.Marshal(&snapshotFile{
		Version:   snapshotVersion,
		SavedAt:   time.Now().UTC(),
		Telemetry: f.store.Snapshot(),
	})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fileName); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores telemetry from fileName. A missing file is not an
// error. Files written before the versioned envelope hold a bare snapshot.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var file snapshotFile
	if err := json.Unmarshal(decompressedData, &file); err == nil && file.Version > 0 {
		if file.Version > snapshotVersion {
			return fmt.Errorf("telemetry snapshot version %d is newer than supported %d", file.Version, snapshotVersion)
		}
		f.store.Restore(file.Telemetry)
		return nil
	}

	f.logger.Warnf(providers.TypeApp, "Unversioned telemetry snapshot found, trying bare format")
	var bare health.TelemetrySnapshot
	if err := json.Unmarshal(decompressedData, &bare); err != nil {
		f.logger.Warnf(providers.TypeApp, "Telemetry snapshot unreadable")
		return err
	}
	f.store.Restore(&bare)
	return nil
}
