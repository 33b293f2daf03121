package media

import (
	"time"
)

// Status of a slice in the registry. A slice is Unsaved from the moment
// it is encoded until its bytes are in storage, then it becomes Active.
// Only active slices are served from the registry.
type Status string

const (
	Unsaved Status = "unsaved"
	Active  Status = "active"
)

type Slices []Slice

// Slice is one stored rendition of an image, the original included
type Slice struct {
	ID      ID `json:"id"`
	ImageID ID `json:"imageId"`

	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Size    int  `json:"size"`
	Quality int  `json:"quality"`
	Cropped bool `json:"cropped"`

	// Filename is unique per image, see ComputeSliceFilename
	Filename  string `json:"filename"`
	Namespace string `json:"namespace"`
	// Path is the key of the object in storage
	Path string `json:"path"`

	Extension Extension `json:"extension"`
	Mime      string    `json:"mime"`

	IsOriginal bool      `json:"isOriginal"`
	IsValid    bool      `json:"-"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Activate marks a stored slice as servable under the given registry id
func (s *Slice) Activate(id ID) {
	s.ID = id
	s.IsValid = true
	s.Status = Active
}

func (s Slice) IsActive() bool {
	return s.Status == Active
}

func ComputeSliceFilename(imageID ID, filename string) string {
	return imageID.String() + "/" + filename
}

func ComputeSlicePath(namespace string, imageID ID, filename string) string {
	return namespace + "/" + ComputeSliceFilename(imageID, filename)
}
