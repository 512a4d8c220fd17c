package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id: a timestamp plus random payload, used for
// upload filenames so concurrent uploads never collide.
func New() string {
	return ksuid.New().String()
}
