package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/schema"
)

// ReadWorkflow loads the workflow named by arg:
// "-" reads a JSON or YAML document from stdin, a .json/.yaml/.yml path is a
// workflow document, and anything else goes through schema.DecodeInput
// (media reference, inline JSON or result stream token).
func ReadWorkflow(arg string, stdin io.Reader) (domain.Node, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return schema.ParseYAML(data)
	}

	if isDocument(arg) {
		if _, err := os.Stat(arg); err == nil {
			return schema.ParseFile(arg)
		}
	}
	return schema.DecodeInput(arg)
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
