package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/denismitr/imagine/internal/validation"
	"github.com/gosimple/slug"
)

// ElementType of global sets, field layouts of a global set are associated with it
const ElementType = "GlobalSet"

const maxShortText = 255

var rxHandle = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// handles that would shadow attributes of every element
var reservedHandles = map[string]bool{
	"id":            true,
	"uid":           true,
	"name":          true,
	"handle":        true,
	"title":         true,
	"slug":          true,
	"uri":           true,
	"url":           true,
	"fieldlayoutid": true,
	"datecreated":   true,
	"dateupdated":   true,
}

type ID string

func (id ID) String() string {
	return string(id)
}

// GlobalSet is a named container of fields that are not tied to any entry
type GlobalSet struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	Handle        string    `json:"handle"`
	FieldLayoutID int       `json:"fieldLayoutId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (gs GlobalSet) String() string {
	return gs.Name
}

func (gs GlobalSet) ElementType() string {
	return ElementType
}

// CPEditURL is the control panel page editing the global set
func (gs GlobalSet) CPEditURL(cpBaseURL string) string {
	return strings.TrimRight(cpBaseURL, "/") + "/globals/" + gs.Handle
}

func (gs GlobalSet) Validate() *validation.Error {
	vErr := validation.New()

	switch name := strings.TrimSpace(gs.Name); {
	case name == "":
		vErr.Add("name", "name is required")
	case utf8.RuneCountInString(name) > maxShortText:
		vErr.Add("name", fmt.Sprintf("name cannot be longer than %d characters", maxShortText))
	}

	switch {
	case gs.Handle == "":
		vErr.Add("handle", "handle is required")
	case utf8.RuneCountInString(gs.Handle) > maxShortText:
		vErr.Add("handle", fmt.Sprintf("handle cannot be longer than %d characters", maxShortText))
	case !rxHandle.MatchString(gs.Handle):
		vErr.Add("handle", fmt.Sprintf("handle %q must start with a letter and contain only letters, digits and underscores", gs.Handle))
	case reservedHandles[strings.ToLower(gs.Handle)]:
		vErr.Add("handle", fmt.Sprintf("handle %q is reserved", gs.Handle))
	}

	if gs.FieldLayoutID < 0 {
		vErr.Add("fieldLayoutId", "field layout id cannot be negative")
	}

	return vErr
}

// MakeHandle derives a camelCase handle from a display name, e.g. "Site Footer" -> "siteFooter"
func MakeHandle(name string) string {
	words := strings.Split(slug.Make(name), "-")

	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}

		if b.Len() == 0 {
			b.WriteString(w)
			continue
		}

		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}

	handle := b.String()
	if handle != "" && !unicode.IsLetter(rune(handle[0])) {
		handle = "set" + strings.ToUpper(handle[:1]) + handle[1:]
	}

	if len(handle) > maxShortText {
		handle = handle[:maxShortText]
	}

	return handle
}
