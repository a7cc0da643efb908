package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

const (
	MagicHeader string = `SXRP` // 4 байта
	Version1    uint32 = 1
)

// ReplayFileHeader - точное представление заголовка файла.
// binary.Write пишет его целиком: внутри только массивы и числа.
type ReplayFileHeader struct {
	Magic      [4]byte // 4 байта
	Version    uint32  // 4 байта
	Seed       int64   // 8 байт
	Timestamp  int64   // 8 байт
	MatchLen   uint16  // 2 байта
	LayoutLen  uint16  // 2 байта
	EntryCount uint32  // 4 байта
}

// EntryHeader - заголовок каждой записи журнала.
type EntryHeader struct {
	Tick       uint32 // 4
	NameLen    uint8  // 1
	Child      uint8  // 1
	Slot       uint16 // 2
	ParentKey  uint64 // 8 (types.Identity.Key)
	PayloadLen uint16 // 2
}

// ReplayService пишет и читает журналы команд в каталоге SaveDir.
type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	// Создаем папку если нет
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("replay dir %s: %w", dir, err)
	}
	return &ReplayService{SaveDir: dir}, nil
}

// FileName - имя файла журнала матча.
func FileName(session *domain.ReplaySession) string {
	return fmt.Sprintf("replay_%s_%d.sxrp", session.MatchID, session.Seed)
}

func (s *ReplayService) Save(session *domain.ReplaySession) error {
	path := filepath.Join(s.SaveDir, FileName(session))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeBinary(w, session); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Flush()
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	if len(s.MatchID) > 0xFFFF || len(s.Layout) > 0xFFFF {
		return fmt.Errorf("match or layout name too long")
	}

	// 1. Глобальный заголовок
	header := ReplayFileHeader{
		Version:    Version1,
		Seed:       s.Seed,
		Timestamp:  s.Timestamp,
		MatchLen:   uint16(len(s.MatchID)),
		LayoutLen:  uint16(len(s.Layout)),
		EntryCount: uint32(len(s.Entries)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := io.WriteString(w, s.MatchID); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s.Layout); err != nil {
		return err
	}

	// 2. Записи журнала
	for idx, entry := range s.Entries {
		name := []byte(entry.Name)
		if len(name) > 255 {
			return fmt.Errorf("entry %d: action name too long: %d", idx, len(name))
		}
		if len(entry.Payload) > 0xFFFF {
			return fmt.Errorf("entry %d: payload too long: %d", idx, len(entry.Payload))
		}
		if entry.Slot < 0 || entry.Slot > 0xFFFF {
			return fmt.Errorf("entry %d: child slot out of range: %d", idx, entry.Slot)
		}

		eh := EntryHeader{
			Tick:       entry.Tick,
			NameLen:    uint8(len(name)),
			Slot:       uint16(entry.Slot),
			ParentKey:  entry.Parent.Key(),
			PayloadLen: uint16(len(entry.Payload)),
		}
		if entry.Child {
			eh.Child = 1
		}

		if err := binary.Write(w, binary.LittleEndian, &eh); err != nil {
			return err
		}
		if _, err := w.Write(name); err != nil {
			return err
		}
		if len(entry.Payload) > 0 {
			if _, err := w.Write(entry.Payload); err != nil {
				return err
			}
		}
	}

	return nil
}
