// Package preferences obtains ranking preferences from the user.
package preferences

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wonny/stockpick/internal/contracts"
)

// ErrInvalidTopN is returned when the top-N answer is not an integer
var ErrInvalidTopN = errors.New("number of top stocks must be an integer")

// Prompts asked by the interactive resolver, in order
const (
	PromptStockType     = "Enter stock type (risky/not risky): "
	PromptTopN          = "Enter the number of top stocks to recommend: "
	PromptESGImportance = "How important are ESG factors? (High/Medium/Low): "
)

// Prompt asks the user for preferences on an interactive terminal
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates a prompt resolver reading answers from in
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Resolve asks stock type, top N and ESG importance
func (p *Prompt) Resolve(ctx context.Context) (contracts.Preferences, error) {
	stockType, err := p.ask(ctx, PromptStockType)
	if err != nil {
		return contracts.Preferences{}, err
	}

	topAnswer, err := p.ask(ctx, PromptTopN)
	if err != nil {
		return contracts.Preferences{}, err
	}
	topN, err := strconv.Atoi(topAnswer)
	if err != nil {
		return contracts.Preferences{}, fmt.Errorf("%w: %q", ErrInvalidTopN, topAnswer)
	}

	esg, err := p.ask(ctx, PromptESGImportance)
	if err != nil {
		return contracts.Preferences{}, err
	}

	prefs := contracts.Preferences{
		StockType:     stockType,
		TopN:          topN,
		ESGImportance: contracts.ESGImportance(esg),
	}
	return prefs.Normalize(), nil
}

func (p *Prompt) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := io.WriteString(p.out, question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	// 마지막 줄은 개행 없이 끝날 수 있음
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// fileSchema is the on-disk preference format
type fileSchema struct {
	StockType     string `yaml:"stock_type"`
	TopN          int    `yaml:"top_n" validate:"gte=0"`
	ESGImportance string `yaml:"esg_importance"`
}

// File reads preferences from a YAML file
type File struct {
	path string
}

// NewFile creates a file resolver
func NewFile(path string) *File {
	return &File{path: path}
}

// Resolve loads the YAML file
// KnownFields(true)로 오타 필드 즉시 실패
func (f *File) Resolve(ctx context.Context) (contracts.Preferences, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return contracts.Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML preference data
func Parse(data []byte) (contracts.Preferences, error) {
	var raw fileSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&raw); err != nil {
		return contracts.Preferences{}, fmt.Errorf("failed to parse preferences: %w", err)
	}

	if err := validator.New().Struct(raw); err != nil {
		return contracts.Preferences{}, fmt.Errorf("invalid preferences: %w", err)
	}

	prefs := contracts.Preferences{
		StockType:     raw.StockType,
		TopN:          raw.TopN,
		ESGImportance: contracts.ESGImportance(raw.ESGImportance),
	}
	return prefs.Normalize(), nil
}

// Static returns fixed preferences, e.g. from command-line flags
type Static struct {
	prefs contracts.Preferences
}

// NewStatic creates a static resolver
func NewStatic(prefs contracts.Preferences) *Static {
	return &Static{prefs: prefs}
}

// Resolve returns the configured preferences
func (s *Static) Resolve(ctx context.Context) (contracts.Preferences, error) {
	return s.prefs.Normalize(), nil
}
