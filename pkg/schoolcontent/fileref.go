package schoolcontent

import (
	"fmt"
	"strconv"
	"strings"
)

// InternalRefPrefix precedes the StoredFile id in an internal reference.
const InternalRefPrefix = "internal-reference/"

// PublicObjectMarker is the path segment that identifies a public object URL
// on the remote storage service. Everything after it is "<bucket>/<path>".
const PublicObjectMarker = "/storage/v1/object/public/"

// RefKind tags the variant held by a FileRef.
type RefKind string

// Reference kinds.
const (
	RefKindNone     RefKind = ""
	RefKindInternal RefKind = "internal"
	RefKindRemote   RefKind = "remote"
	RefKindLegacy   RefKind = "legacy"
)

// FileRef is the parsed form of a content record's file reference string.
// Exactly one variant holds: a StoredFile row id, a remote public object
// URL, or a legacy local filename. Records persist the string encoding; the
// read and cleanup paths pattern-match on the parsed form instead of
// string-sniffing at each call site.
type FileRef struct {
	Kind RefKind
	ID   int64  // internal: StoredFile row id
	URL  string // remote: absolute public object URL
	Name string // legacy: bare filename in the local uploads folder
}

// InternalRef builds a reference to a StoredFile row.
func InternalRef(id int64) FileRef {
	return FileRef{Kind: RefKindInternal, ID: id}
}

// RemoteRef builds a reference to a remote public object URL.
func RemoteRef(url string) FileRef {
	return FileRef{Kind: RefKindRemote, URL: url}
}

// LegacyRef builds a reference to a legacy local filename.
func LegacyRef(name string) FileRef {
	return FileRef{Kind: RefKindLegacy, Name: name}
}

// ParseRef classifies a stored reference string. An empty string yields the
// zero FileRef. A malformed internal reference (non-numeric id) degrades to
// a legacy reference rather than an error: cleanup treats it as advisory.
func ParseRef(s string) FileRef {
	if s == "" {
		return FileRef{}
	}
	if rest, ok := strings.CutPrefix(s, InternalRefPrefix); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return InternalRef(id)
		}
		return LegacyRef(s)
	}
	if strings.Contains(s, PublicObjectMarker) {
		return RemoteRef(s)
	}
	return LegacyRef(s)
}

// String renders the reference in its persisted form.
func (r FileRef) String() string {
	switch r.Kind {
	case RefKindInternal:
		return fmt.Sprintf("%s%d", InternalRefPrefix, r.ID)
	case RefKindRemote:
		return r.URL
	case RefKindLegacy:
		return r.Name
	default:
		return ""
	}
}

// IsZero reports whether the reference is empty.
func (r FileRef) IsZero() bool {
	return r.Kind == RefKindNone
}

// PublicObjectURL builds the public URL for an object, matching the shape
// RemoteObjectPath parses back.
func PublicObjectURL(baseURL, bucket, objectKey string) string {
	return strings.TrimSuffix(baseURL, "/") + PublicObjectMarker + bucket + "/" + objectKey
}

// RemoteObjectPath extracts the object path from a remote reference when the
// URL's bucket segment matches the given bucket. It returns false for
// non-remote references, foreign buckets, and malformed URLs.
func (r FileRef) RemoteObjectPath(bucket string) (string, bool) {
	if r.Kind != RefKindRemote || bucket == "" {
		return "", false
	}
	_, after, found := strings.Cut(r.URL, PublicObjectMarker)
	if !found {
		return "", false
	}
	// Strip query parameters some storage services append to public URLs.
	if i := strings.IndexByte(after, '?'); i >= 0 {
		after = after[:i]
	}
	urlBucket, objectPath, found := strings.Cut(after, "/")
	if !found || urlBucket != bucket || objectPath == "" {
		return "", false
	}
	return objectPath, true
}
