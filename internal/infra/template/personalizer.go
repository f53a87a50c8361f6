package template

import (
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Anmepod44/website/internal/domain/consts"
	"github.com/Anmepod44/website/internal/domain/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sample contact details baked into the shipped templates. They are replaced verbatim.
const (
	SampleName         = "Ariana"
	SamplePhone        = "+96 56-85-1379"
	SampleEmail        = "contact@robert.com"
	SampleBusinessName = "Wpshopmart"
)

var titlePattern = regexp.MustCompile(`<title>.*?</title>`)

type Placeholder struct {
	Token string
	Value string
}

type Personalizer struct{}

func NewPersonalizer() *Personalizer {
	return &Personalizer{}
}

// Personalize renders templatePath for the request and writes the result to outputPath.
// The template file itself is never modified.
func (p *Personalizer) Personalize(templatePath, outputPath string, req entity.BuildRequest) error {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", templatePath, err)
	}

	rendered := p.Render(string(content), req)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("writing rendered site to %s: %w", outputPath, err)
	}
	slog.Info("Modified HTML saved", "output", outputPath)
	return nil
}

// Render applies the placeholder table in one pass and then rewrites the page title.
// Tokens missing from the document are left as they are.
func (p *Personalizer) Render(document string, req entity.BuildRequest) string {
	table := Placeholders(req)
	pairs := make([]string, 0, len(table)*2)
	for _, ph := range table {
		pairs = append(pairs, ph.Token, ph.Value)
	}
	rendered := strings.NewReplacer(pairs...).Replace(document)

	title := "<title>" + html.EscapeString(TitleFromBusinessName(req.BusinessName)) + "</title>"
	return titlePattern.ReplaceAllLiteralString(rendered, title)
}

// Placeholders builds the token -> value table for a request, contact fields first.
func Placeholders(req entity.BuildRequest) []Placeholder {
	table := []Placeholder{
		{Token: SampleName, Value: html.EscapeString(req.Name)},
		{Token: SamplePhone, Value: html.EscapeString(req.Phone)},
		{Token: SampleEmail, Value: html.EscapeString(req.Email)},
		{Token: SampleBusinessName, Value: html.EscapeString(req.BusinessName)},
	}
	links := req.MergedCTALinks()
	for _, platform := range consts.Platforms {
		table = append(table, Placeholder{
			Token: SocialAnchor(platform, consts.DefaultCTALink),
			Value: SocialAnchor(platform, html.EscapeString(links[platform])),
		})
	}
	return table
}

// SocialAnchor is the exact markup of a social icon link in the templates.
func SocialAnchor(platform consts.Platform, href string) string {
	return `<a href="` + href + `"><ion-icon name="logo-` + string(platform) + `"></ion-icon></a>`
}

// TitleFromBusinessName capitalizes the first letter of every whitespace separated word,
// lowercases the rest and joins them, "acme plumbing" becomes "AcmePlumbing".
// Hyphens and symbols inside a word do not start a new word: "smith-jones" becomes "Smith-jones".
func TitleFromBusinessName(businessName string) string {
	lower := cases.Lower(language.Und)
	var b strings.Builder
	for _, word := range strings.Fields(businessName) {
		first, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToTitle(first))
		b.WriteString(lower.String(word[size:]))
	}
	return b.String()
}
