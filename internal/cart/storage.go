package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// StorageKey is the one name the cart is stored under.
const StorageKey = "cart"

// Storage holds the serialized cart.
type Storage interface {
	// Load returns nil, nil when nothing is stored.
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileStorage keeps the cart in <Dir>/cart.json.
type FileStorage struct {
	Dir string
}

func (s FileStorage) path() string {
	return filepath.Join(s.Dir, StorageKey+".json")
}

func (s FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Save writes through a temporary file so a crash never leaves half a cart.
func (s FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, StorageKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cart file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return os.Rename(tmp.Name(), s.path())
}

func (s FileStorage) Clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStorage keeps the cart in a byte slice.
type MemoryStorage struct {
	Data []byte
}

func (s *MemoryStorage) Load() ([]byte, error) { return s.Data, nil }

func (s *MemoryStorage) Save(data []byte) error {
	s.Data = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.Data = nil
	return nil
}

func load(storage Storage) []Line {
	data, err := storage.Load()
	if err != nil {
		log.WithError(err).Warn("Failed to read stored cart, starting empty")
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		log.WithError(err).Warn("Stored cart is malformed, starting empty")
		return nil
	}

	// Stored data is untrusted: drop broken lines and fold duplicates.
	var clean []Line
	seen := make(map[string]int)
	for _, l := range lines {
		if l.ItemID == "" || l.Quantity < 1 || l.Price.IsNegative() {
			continue
		}
		if i, ok := seen[l.ItemID]; ok {
			clean[i].Quantity += l.Quantity
			continue
		}
		seen[l.ItemID] = len(clean)
		clean = append(clean, l)
	}
	return clean
}

func save(storage Storage, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return storage.Save(data)
}
