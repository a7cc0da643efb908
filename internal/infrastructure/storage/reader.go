package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

var ErrInvalidMagic = errors.New("invalid magic")

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	session, err := readBinary(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return session, nil
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, ErrInvalidMagic
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	match, err := readString(r, int(header.MatchLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read match id: %w", err)
	}
	layout, err := readString(r, int(header.LayoutLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	session := &domain.ReplaySession{
		MatchID:   match,
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
		Layout:    layout,
		Entries:   make([]domain.JournalEntry, 0, header.EntryCount),
	}

	// 2. Читаем записи
	for i := uint32(0); i < header.EntryCount; i++ {
		var eh EntryHeader
		if err := binary.Read(r, binary.LittleEndian, &eh); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		name, err := readString(r, int(eh.NameLen))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		entry := domain.JournalEntry{
			Tick:   eh.Tick,
			Name:   domain.ActionName(name),
			Child:  eh.Child != 0,
			Slot:   int(eh.Slot),
			Parent: types.IdentityFromKey(eh.ParentKey),
		}
		if eh.PayloadLen > 0 {
			entry.Payload = make([]byte, eh.PayloadLen)
			if _, err := io.ReadFull(r, entry.Payload); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}

		session.Entries = append(session.Entries, entry)
	}

	return session, nil
}

func readString(r io.Reader, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
