package items

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Item is a classified request item. Value is already resolved: text, a
// *File, or a decoded JSON value.
type Item struct {
	Key   string
	Value any
	Sep   Separator
	Orig  string
}

type resolveFunc func(p *Parser, s Split) (any, error)

type handler struct {
	bucket  Bucket
	resolve resolveFunc
}

var dispatch = [...]handler{
	RoleHeader:               {BucketHeaders, passThrough},
	RoleQuery:                {BucketParams, passThrough},
	RoleFile:                 {BucketFiles, (*Parser).attachFile},
	RoleData:                 {BucketData, passThrough},
	RoleDataEmbedFile:        {BucketData, (*Parser).embedFile},
	RoleDataRawJSON:          {BucketData, (*Parser).rawJSON},
	RoleDataEmbedRawJSONFile: {BucketData, (*Parser).embedRawJSONFile},
}

// Fails to compile when a Role is added without a dispatch entry.
var _ = [1]struct{}{}[len(dispatch)-int(roleCount)]

// Parser turns item arguments into RequestParts.
type Parser struct {
	separators SeparatorSet
	readFile   func(string) ([]byte, error)
	homeDir    func() (string, error)
	logger     *slog.Logger
}

type Option func(*Parser)

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		separators: GroupAllItems,
		readFile:   os.ReadFile,
		homeDir:    os.UserHomeDir,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSeparators restricts the separators recognized in items.
func WithSeparators(seps SeparatorSet) Option {
	return func(p *Parser) {
		p.separators = seps
	}
}

func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(p *Parser) {
		p.readFile = fn
	}
}

func WithHomeDir(fn func() (string, error)) Option {
	return func(p *Parser) {
		p.homeDir = fn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// Parse classifies args in order into a new RequestParts. The first error
// aborts the parse and no parts are returned.
func (p *Parser) Parse(args []string) (*RequestParts, error) {
	parts := NewRequestParts()
	for _, arg := range args {
		split, err := SplitItem(arg, p.separators)
		if err != nil {
			return nil, err
		}
		if err := p.Apply(parts, split); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// Apply classifies split and stores the result into parts.
func (p *Parser) Apply(parts *RequestParts, split Split) error {
	item, bucket, err := p.Classify(split)
	if err != nil {
		return err
	}
	if refersToFile(split.Sep) {
		parts.Sources = append(parts.Sources, p.expandUser(split.Value))
	}
	parts.Add(bucket, item)
	p.logger.Debug("item classified",
		"key", item.Key,
		"separator", string(item.Sep),
		"bucket", bucket.String(),
	)
	return nil
}

// Sources returns the paths that file and embed items in args refer to,
// without reading the files. Items that do not split are skipped.
func (p *Parser) Sources(args []string) []string {
	var paths []string
	for _, arg := range args {
		split, err := SplitItem(arg, p.separators)
		if err != nil || !refersToFile(split.Sep) {
			continue
		}
		paths = append(paths, p.expandUser(split.Value))
	}
	return paths
}

func refersToFile(sep Separator) bool {
	return sep == SepFile || GroupDataEmbedItems.Has(sep)
}

// Classify resolves the value of split and reports its target bucket.
// It panics on a separator with no handler.
func (p *Parser) Classify(split Split) (Item, Bucket, error) {
	role, ok := split.Sep.Role()
	if !ok || int(role) >= len(dispatch) || dispatch[role].resolve == nil {
		panic(fmt.Sprintf("items: no handler for separator %q", split.Sep))
	}
	h := dispatch[role]

	value, err := h.resolve(p, split)
	if err != nil {
		return Item{}, 0, err
	}

	return Item{
		Key:   split.Key,
		Value: value,
		Sep:   split.Sep,
		Orig:  split.Orig,
	}, h.bucket, nil
}

func passThrough(_ *Parser, s Split) (any, error) {
	return s.Value, nil
}

func (p *Parser) attachFile(s Split) (any, error) {
	data, err := p.readFile(p.expandUser(s.Value))
	if err != nil {
		return nil, newFileError(s.Orig, err)
	}
	return &File{Name: filepath.Base(s.Value), Content: data}, nil
}

func (p *Parser) embedFile(s Split) (any, error) {
	data, err := p.readFile(p.expandUser(s.Value))
	if err != nil {
		return nil, newFileError(s.Orig, err)
	}
	if !utf8.Valid(data) {
		return nil, &ParseError{
			Kind: NotUTF8Text,
			Item: s.Orig,
			Message: fmt.Sprintf("cannot embed the content of %q, not a UTF8 or ASCII-encoded text file",
				s.Value),
		}
	}
	return string(data), nil
}

func (p *Parser) rawJSON(s Split) (any, error) {
	return parseRawJSON(s.Orig, s.Value)
}

func (p *Parser) embedRawJSONFile(s Split) (any, error) {
	text, err := p.embedFile(s)
	if err != nil {
		return nil, err
	}
	return parseRawJSON(s.Orig, text.(string))
}

func parseRawJSON(orig, text string) (any, error) {
	v, err := decodeJSON([]byte(text))
	if err != nil {
		return nil, &ParseError{Kind: InvalidJSON, Item: orig, Message: err.Error(), Err: err}
	}
	return v, nil
}

// expandUser replaces a leading "~" with the home directory.
func (p *Parser) expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := p.homeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[1:])
}
