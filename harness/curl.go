package harness

import (
	"net/http"
	"sort"
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

// curlCommand renders a failed request as a copy-pasteable curl invocation.
// The bearer token is redacted; the command is diagnostic output, not a
// credential store.
func curlCommand(method, url string, headers http.Header, body []byte) string {
	var b commandBuilder
	b.add("curl", "-s", "-X", method)

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := headers.Get(name)
		if strings.EqualFold(name, "Authorization") {
			value = "Bearer <token>"
		}
		b.add("-H", name+": "+value)
	}

	if len(body) > 0 {
		b.add("-d", string(body))
	}
	b.add(url)
	return b.String()
}
