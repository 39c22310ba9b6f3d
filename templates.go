package formview

import (
	"io/fs"

	"github.com/goliatone/go-formview/internal/contact"
)

// EmbeddedTemplates exposes the sample contact form templates so callers can
// reuse or extend them.
func EmbeddedTemplates() fs.FS {
	return contact.Templates()
}
