package backoffice

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

type createImageDTO struct {
	name         string
	originalName string
	originalExt  string
	publish      bool
	originalSize int64
	namespace    string
	source       io.Reader
}

type globalSetRequest struct {
	Name          string `json:"name"`
	Handle        string `json:"handle"`
	FieldLayoutID int    `json:"fieldLayoutId"`
}

func intFromQueryStringOrDefault(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}

	return n, nil
}

func extractExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), "."))
}

// createURLFriendlyName slugs the given name or the uploaded file name without its extension
func createURLFriendlyName(dto *createImageDTO) string {
	name := dto.name
	if name == "" {
		name = strings.TrimSuffix(dto.originalName, filepath.Ext(dto.originalName))
	}

	return slug.Make(name) + "." + dto.originalExt
}
