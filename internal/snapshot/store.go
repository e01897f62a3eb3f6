package snapshot

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Store persists the last-known balance and the set of payment hashes
// that already triggered a notification. Both live in flat files so the
// state survives restarts and stays inspectable with a text editor.
type Store struct {
	balancePath   string
	processedPath string
}

// New creates a store over the two state files. The files are created
// on first Save.
func New(balancePath, processedPath string) *Store {
	return &Store{
		balancePath:   balancePath,
		processedPath: processedPath,
	}
}

// Load reads the persisted state. found is false when no balance file
// exists yet (first run); the processed set is empty in that case too
// unless its file is present.
func (s *Store) Load() (balance int64, found bool, processed map[string]struct{}, err error) {
	processed = make(map[string]struct{})

	data, err := os.ReadFile(s.balancePath)
	switch {
	case os.IsNotExist(err):
		err = nil
	case err != nil:
		return 0, false, nil, fmt.Errorf("read balance file: %w", err)
	default:
		content := strings.TrimSpace(string(data))
		if content != "" {
			balance, err = strconv.ParseInt(content, 10, 64)
			if err != nil {
				return 0, false, nil, fmt.Errorf("parse balance %q: %w", content, err)
			}
		}
		found = true
	}

	f, err := os.Open(s.processedPath)
	if os.IsNotExist(err) {
		return balance, found, processed, nil
	}
	if err != nil {
		return 0, false, nil, fmt.Errorf("open processed file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			processed[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, false, nil, fmt.Errorf("scan processed file: %w", err)
	}

	return balance, found, processed, nil
}

// Save atomically replaces both state files. A reader never observes a
// partially written file: content goes to a temp file in the same
// directory which is fsynced and renamed over the target.
func (s *Store) Save(balance int64, processed map[string]struct{}) error {
	if err := writeAtomic(s.balancePath, []byte(strconv.FormatInt(balance, 10)+"\n")); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}

	ids := make([]string, 0, len(processed))
	for id := range processed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}

	if err := writeAtomic(s.processedPath, []byte(b.String())); err != nil {
		return fmt.Errorf("save processed set: %w", err)
	}

	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
