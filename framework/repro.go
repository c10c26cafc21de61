package framework

import (
	"strings"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CurlCommand renders a request as a shell command that reproduces it by hand.
func CurlCommand(baseURL string, spec RequestSpec) string {
	path, err := spec.ResolvePath()
	if err != nil {
		path = spec.Path
	}
	var b commandBuilder
	b.add("curl", "-i", "-X", spec.Method)
	if spec.Body != nil {
		b.add("-H", "Content-Type: application/json", "--data", string(spec.Body))
	}
	b.add(strings.TrimSuffix(baseURL, "/") + path)
	return b.String()
}
