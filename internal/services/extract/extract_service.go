package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// binaryExtensions are formats that need a parser this service does not have
var binaryExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".ppt":  true,
	".pptx": true,
	".zip":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Service turns uploaded text-format files into plain text for chunking.
// Plain text passes through, markdown is flattened through its AST and HTML is
// converted to markdown first.
type Service struct {
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

// NewService creates a text extractor
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		),
		logger: logger,
	}
}

// Extract returns the text content of data, picking the format from the filename extension
func (s *Service) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if binaryExtensions[ext] {
		return "", fmt.Errorf("%w: %s files are not supported", models.ErrUnsupportedFormat, ext)
	}
	// invalid bytes are dropped here; normalization strips the remaining non-ASCII
	data = []byte(strings.ToValidUTF8(string(data), ""))

	var (
		result string
		err    error
	)
	switch ext {
	case ".md", ".markdown":
		result = s.MarkdownToText(data)
	case ".html", ".htm":
		result, err = s.HTMLToText(data)
	default:
		result = string(data)
	}
	if err != nil {
		return "", err
	}

	s.logger.Debug().
		Str("file", filename).
		Str("format", formatName(ext)).
		Int("input_bytes", len(data)).
		Int("text_length", len(result)).
		Msg("Text extracted")

	return result, nil
}

// HTMLToText drops script, style and noscript elements, converts the rest to
// markdown and flattens that to text
func (s *Service) HTMLToText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	converter := md.NewConverter("", true, nil)
	markdown := converter.Convert(doc.Selection)
	if strings.TrimSpace(markdown) == "" {
		return strings.TrimSpace(doc.Text()), nil
	}
	return s.MarkdownToText([]byte(markdown)), nil
}

// MarkdownToText renders the text nodes of a markdown document, one block per line
func (s *Service) MarkdownToText(source []byte) string {
	doc := s.markdown.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if endsLine(n) {
				b.WriteByte('\n')
			} else if n.Kind() == extast.KindTableCell {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				b.Write(line.Value(source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func endsLine(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindHeading, ast.KindListItem, ast.KindTextBlock,
		ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindBlockquote, extast.KindTableRow,
		extast.KindTableHeader:
		return true
	}
	return false
}

func formatName(ext string) string {
	switch ext {
	case ".md", ".markdown":
		return "markdown"
	case ".html", ".htm":
		return "html"
	}
	return "text"
}
