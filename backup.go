// backup.go: Backup-before-write protection for geometry files
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"os"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// BackupManager creates and restores .bak copies of geometry files. A
// backup must complete successfully before any write proceeds; a failed
// backup aborts the whole operation with the original file untouched.
type BackupManager struct {
	// now is swappable for tests; production reads go through timecache
	// so backup naming costs no time syscall.
	now func() time.Time
}

// NewBackupManager returns a manager with the timecache clock.
func NewBackupManager() *BackupManager {
	return &BackupManager{now: timecache.CachedTime}
}

// Backup copies path to path+".bak", replacing any previous backup. This
// is the single rolling backup taken before every write.
func (b *BackupManager) Backup(path string) (string, error) {
	backupPath := path + ".bak"
	if err := copyFile(path, backupPath); err != nil {
		return "", errors.Wrap(err, ErrCodeBackupFailure, "failed to create backup")
	}
	return backupPath, nil
}

// TimestampedBackup copies path to path+".bak_<YYYYMMDD_HHMMSS>". Unlike
// Backup it never overwrites an earlier copy, for retaining history
// across a batch of edits.
func (b *BackupManager) TimestampedBackup(path string) (string, error) {
	backupPath := path + ".bak_" + b.now().Format(backupTimestampLayout)
	if err := copyFile(path, backupPath); err != nil {
		return "", errors.Wrap(err, ErrCodeBackupFailure, "failed to create timestamped backup")
	}
	return backupPath, nil
}

// Restore copies the rolling .bak file back over path.
// Fails with ErrCodeBackupNotFound if no backup exists.
func (b *BackupManager) Restore(path string) error {
	backupPath := path + ".bak"
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return errors.New(ErrCodeBackupNotFound, "no backup exists for "+path)
	}

	if err := copyFile(backupPath, path); err != nil {
		return errors.Wrap(err, ErrCodeBackupFailure, "failed to restore backup")
	}
	return nil
}

// copyFile copies src to dst preserving the source permissions.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(src) // #nosec G304 -- paths derive from caller input intentionally
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, info.Mode().Perm())
}
