package domain

// ChangeType describes what happened to a corpus file.
type ChangeType int

const (
	// ChangeCreated means a matching file appeared.
	ChangeCreated ChangeType = iota
	// ChangeUpdated means a matching file was written.
	ChangeUpdated
	// ChangeDeleted means a matching file was removed or renamed away.
	ChangeDeleted
)

// String returns the string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// CorpusChange is a single file event under a watched corpus.
type CorpusChange struct {
	Type ChangeType
	Path string
}
