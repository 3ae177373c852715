package port

// Snapshot is a scoped backup of one file. Exactly one of Restore or Discard
// must be called on every exit path of the owning pipeline run.
type Snapshot interface {
	// Path is where the backup bytes were written.
	Path() string
	// Restore copies the backup bytes back over the working path.
	Restore() error
	// Discard removes the snapshot file without touching the working path.
	Discard() error
}

// BackupManager snapshots source files around a processing attempt.
type BackupManager interface {
	Acquire(path string) (Snapshot, error)
}
