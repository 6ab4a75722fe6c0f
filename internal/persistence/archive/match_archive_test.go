package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArchiveMatch_CopiesFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "turns", "turns-m1.jsonl.zst")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := []byte("dummy")
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	out, err := ArchiveMatch(dir, MatchArchiveMeta{MatchID: "m1", Turns: 400, FinalBank: 31000},
		src, filepath.Join(dir, "missing.frame.zst"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(out, "turns-m1.jsonl.zst"))
	if err != nil {
		t.Fatalf("read archived: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("archived content mismatch: got=%q want=%q", got, want)
	}

	meta, err := ReadMeta(out)
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if meta.MatchID != "m1" || meta.FinalBank != 31000 || len(meta.Files) != 1 || meta.CreatedAt == "" {
		t.Fatalf("meta=%+v", meta)
	}
}

func TestArchiveMatch_RequiresID(t *testing.T) {
	if _, err := ArchiveMatch(t.TempDir(), MatchArchiveMeta{}); err == nil {
		t.Fatalf("expected error")
	}
}
