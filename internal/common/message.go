package common

// UserMessage renders err for people, prefixed by its outermost kind.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch KindOf(err) {
	case ErrStorage:
		return "Storage error: " + err.Error()
	case ErrRemote:
		return "Connection error: " + err.Error()
	case ErrSync:
		return "Sync error: " + err.Error()
	case ErrCache:
		return "Cache error: " + err.Error()
	}

	return "Unexpected error: " + err.Error()
}

// KindName is a short machine-readable name of the outermost kind.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrStorage:
		return "storage"
	case ErrRemote:
		return "remote"
	case ErrSync:
		return "sync"
	case ErrCache:
		return "cache"
	default:
		return "internal"
	}
}
