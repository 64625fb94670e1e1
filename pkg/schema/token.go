package schema

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ofekfell/mediaflow/pkg/domain"
)

// EncodeToken renders a tree as a base64 result stream token.
func EncodeToken(n domain.Node) (string, error) {
	data, err := MarshalJSON(n)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeToken parses a result stream token back into a tree.
func DecodeToken(tok string) (domain.Node, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(tok))
	if err != nil {
		return nil, fmt.Errorf("%w: result stream is not base64: %v", domain.ErrInvalidNode, err)
	}
	return ParseJSON(data)
}

// DecodeInput interprets a caller supplied input string. An http(s) URL or an
// existing local file becomes a leaf, a string starting with "{" is parsed as
// an inline JSON tree, and anything else must be a result stream token.
func DecodeInput(s string) (domain.Node, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidNode)
	}
	if IsReference(s) {
		return domain.Leaf{Reference: s}, nil
	}
	if strings.HasPrefix(s, "{") {
		return ParseJSON([]byte(s))
	}
	n, err := DecodeToken(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is neither a URL, an existing file nor a result stream", domain.ErrInvalidNode, s)
	}
	return n, nil
}

// IsReference reports whether s names a remote URL or an existing local file.
func IsReference(s string) bool {
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && !info.IsDir()
}
