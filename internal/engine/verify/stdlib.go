package verify

import (
	_ "embed"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

//go:embed stdlib/go.txt
var goStdlibData string

var pythonStdlib = map[string]bool{}
var goStdlib = map[string]bool{}

func init() {
	for _, line := range strings.Split(pythonStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			pythonStdlib[line] = true
			// Add base name: e.g. urllib.request -> urllib
			parts := strings.Split(line, ".")
			pythonStdlib[parts[0]] = true
		}
	}

	for _, line := range strings.Split(goStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			goStdlib[line] = true
			parts := strings.Split(line, "/")
			goStdlib[parts[0]] = true
		}
	}
}
