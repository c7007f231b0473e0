package develop

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

const (
	tagSeparatorConstant             = ":"
	invalidImageNameTemplateConstant = "invalid image name %q: %w"
)

// ImageReference names the development image for building and running.
type ImageReference struct {
	// BuildTag is passed to docker build exactly as configured.
	BuildTag string
	// RunReference always carries an explicit tag.
	RunReference string
}

// ParseImageReference validates imageName and derives the build and run references.
// A name without a tag runs as <name>:latest.
func ParseImageReference(imageName string) (ImageReference, error) {
	trimmedName := strings.TrimSpace(imageName)
	tag, tagError := name.NewTag(trimmedName)
	if tagError != nil {
		return ImageReference{}, fmt.Errorf(invalidImageNameTemplateConstant, imageName, tagError)
	}

	runReference := trimmedName
	if !strings.HasSuffix(trimmedName, tagSeparatorConstant+tag.TagStr()) {
		runReference = trimmedName + tagSeparatorConstant + tag.TagStr()
	}
	return ImageReference{BuildTag: trimmedName, RunReference: runReference}, nil
}
