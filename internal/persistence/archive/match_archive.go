package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

type MatchArchiveMeta struct {
	MatchID   string   `json:"match_id"`
	Player    int      `json:"player"`
	Turns     int      `json:"turns"`
	FinalBank int      `json:"final_bank"`
	Files     []string `json:"files"`
	CreatedAt string   `json:"created_at"`
}

// ArchiveMatch copies the files of a finished match (turn log, snapshots)
// into dataDir/archives/<match>/ next to a meta.json. Missing sources are
// skipped; the archive directory is returned.
func ArchiveMatch(dataDir string, meta MatchArchiveMeta, sources ...string) (string, error) {
	if meta.MatchID == "" {
		return "", fmt.Errorf("archive: empty match id")
	}
	dir := filepath.Join(dataDir, "archives", meta.MatchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	meta.Files = meta.Files[:0]
	for _, src := range sources {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(dir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return dir, fmt.Errorf("archive %s: %w", src, err)
		}
		meta.Files = append(meta.Files, filepath.Base(dst))
	}
	meta.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return dir, err
	}
	return dir, os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644)
}

func ReadMeta(dir string) (MatchArchiveMeta, error) {
	var m MatchArchiveMeta
	b, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
