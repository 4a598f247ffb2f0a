package frontend

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

var (
	// ErrNoFrontmatter means the content does not start with a delimiter line.
	ErrNoFrontmatter = errors.New("content does not start with frontmatter delimiter")
	// ErrUnclosedFrontmatter means no closing delimiter line was found.
	ErrUnclosedFrontmatter = errors.New("frontmatter not closed with delimiter")
)

// Document is a markdown file split at its frontmatter block.
type Document struct {
	// Frontmatter is the raw text between the delimiter lines.
	Frontmatter string
	// Body is everything after the closing delimiter line.
	Body string
	// BodyOffset is the number of file lines preceding the body, so body
	// line n is file line n+BodyOffset.
	BodyOffset int
}

// Split separates the frontmatter block from the body. The content must begin
// with a "---" line and the block ends at the next line that is exactly "---".
func Split(content string) (*Document, error) {
	if !strings.HasPrefix(content, Delimiter+"\n") {
		return nil, ErrNoFrontmatter
	}

	lines := strings.SplitAfter(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") != Delimiter {
			continue
		}
		return &Document{
			Frontmatter: strings.Join(lines[1:i], ""),
			Body:        strings.Join(lines[i+1:], ""),
			BodyOffset:  i + 1,
		}, nil
	}
	return nil, ErrUnclosedFrontmatter
}

// Decode parses the frontmatter block as a YAML mapping. An empty block
// yields a nil map and no error.
func (d *Document) Decode() (map[string]any, error) {
	var data map[string]any
	if err := yaml.Unmarshal([]byte(d.Frontmatter), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// ParseYAMLFrontmatter splits content and decodes its frontmatter in one step.
func ParseYAMLFrontmatter(content string) (*Document, map[string]any, error) {
	doc, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	data, err := doc.Decode()
	if err != nil {
		return doc, nil, err
	}
	return doc, data, nil
}
