package session

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"hearingbot/pkg/logx"
)

// backupProfile copies the session profile directory. Individual unreadable
// files (Chrome keeps some locked) are skipped with a warning; the backup is
// best-effort by nature.
func backupProfile(src, dst string, log logx.Logger) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("skipping during backup", logx.String("path", path), logx.Err(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			log.Warn("skipping during backup", logx.String("path", path), logx.Err(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("session profile backed up", logx.String("backup", dst))
	return nil
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
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
