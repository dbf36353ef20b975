package directory

import "strings"

const DefaultPlaceholder = "/schoolImages/default.jpg"

// ResolveImagePath turns a stored image value into a URL path. It does no
// I/O.
func ResolveImagePath(image, publicRoute, placeholder string) string {
	switch {
	case image == "":
		return placeholder
	case strings.HasPrefix(image, "/"):
		return image
	default:
		return strings.TrimRight(publicRoute, "/") + "/" + image
	}
}

// ImageSource tracks one card's image. On a load failure it swaps to the
// placeholder once and then stays there.
type ImageSource struct {
	src         string
	placeholder string
	fellBack    bool
}

func NewImageSource(image, publicRoute, placeholder string) *ImageSource {
	return &ImageSource{
		src:         ResolveImagePath(image, publicRoute, placeholder),
		placeholder: placeholder,
	}
}

func (s *ImageSource) Src() string { return s.src }

// OnError reports whether the source was replaced.
func (s *ImageSource) OnError() bool {
	if s.fellBack {
		return false
	}
	s.fellBack = true
	s.src = s.placeholder
	return true
}
