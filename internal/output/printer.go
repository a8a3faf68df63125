// Package output provides formatted terminal output for recipes.
// This centralizes all printing and formatting logic away from command modules.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/n1rna/recipe-cli/internal/controller"
	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// Format represents different output formats
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name given on the command line
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// Printer handles formatted output to the terminal
type Printer struct {
	writer     io.Writer
	format     Format
	quiet      bool
	msgs       *i18n.Messages
	dateFormat recipe.DateFormat
}

// NewPrinter creates a new printer with the specified format
func NewPrinter(format Format, quiet bool) *Printer {
	return NewPrinterWithWriter(os.Stdout, format, quiet)
}

// NewPrinterWithWriter creates a new printer with a custom writer
func NewPrinterWithWriter(writer io.Writer, format Format, quiet bool) *Printer {
	f, _ := recipe.NewDateFormat(recipe.DefaultTimezone)
	return &Printer{
		writer:     writer,
		format:     format,
		quiet:      quiet,
		msgs:       i18n.Default(),
		dateFormat: f,
	}
}

// SetLocale sets the messages and date format used by table output
func (p *Printer) SetLocale(msgs *i18n.Messages, f recipe.DateFormat) {
	if msgs != nil {
		p.msgs = msgs
	}
	p.dateFormat = f
}

// Success prints a success message
func (p *Printer) Success(message string) {
	if !p.quiet {
		fmt.Fprintf(p.writer, "✓ %s\n", message)
	}
}

// Error prints an error message
func (p *Printer) Error(message string) {
	fmt.Fprintf(p.writer, "✗ %s\n", message)
}

// Warning prints a warning message
func (p *Printer) Warning(message string) {
	if !p.quiet {
		fmt.Fprintf(p.writer, "⚠ %s\n", message)
	}
}

// Info prints an informational message
func (p *Printer) Info(message string) {
	if !p.quiet {
		fmt.Fprintf(p.writer, "ℹ %s\n", message)
	}
}

// Notify implements controller.Notifier for command line use
func (p *Printer) Notify(message string, severity controller.Severity) {
	switch severity {
	case controller.SeveritySuccess:
		p.Success(message)
	case controller.SeverityWarning:
		p.Warning(message)
	case controller.SeverityError:
		p.Error(message)
	default:
		p.Info(message)
	}
}

// PrintRecipe prints a recipe in the specified format
func (p *Printer) PrintRecipe(r *recipe.Recipe) error {
	switch p.format {
	case FormatTable:
		return p.printRecipeTable(r)
	case FormatJSON:
		return p.printJSON(r)
	case FormatYAML:
		return p.printYAML(r)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// PrintDifficulties prints the difficulty classifications
func (p *Printer) PrintDifficulties(difficulties []recipe.Difficulty) error {
	switch p.format {
	case FormatTable:
		return p.printDifficultiesTable(difficulties)
	case FormatJSON:
		return p.printJSON(difficulties)
	case FormatYAML:
		return p.printYAML(difficulties)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// PrintObject prints a value with no table layout of its own. The table
// format falls back to YAML.
func (p *Printer) PrintObject(obj interface{}) error {
	if p.format == FormatJSON {
		return p.printJSON(obj)
	}
	return p.printYAML(obj)
}

// printRecipeTable prints a recipe card
func (p *Printer) printRecipeTable(r *recipe.Recipe) error {
	status := p.msgs.Get(i18n.Draft)
	if r.IsPublished() {
		status = p.msgs.Get(i18n.Published)
	}

	fmt.Fprintf(p.writer, "%s (%s)\n", r.Name, status)
	fmt.Fprintf(p.writer, "ID: %s\n", r.ID)
	if created := recipe.FormatCreatedAt(r.CreatedAt, p.dateFormat); created != "" {
		fmt.Fprintf(p.writer, "[%s] %s\n", recipe.Initials(r.CreatedBy.Name), p.msgs.Get(i18n.CreatedAt, created))
	}
	if r.Image != nil && *r.Image != "" {
		fmt.Fprintf(p.writer, "%s %s\n", p.msgs.Get(i18n.ImageHeading), *r.Image)
	}

	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s\t%s\n", p.msgs.Get(i18n.DescriptionHeading), recipe.Value(r.Description))
	fmt.Fprintf(w, "%s\t%s\n", p.msgs.Get(i18n.TimeHeading), recipe.Value(r.Time))
	difficulty := ""
	if r.Difficulty != nil {
		difficulty = r.Difficulty.Name
	}
	fmt.Fprintf(w, "%s\t%s\n", p.msgs.Get(i18n.DifficultyHeading), difficulty)
	fmt.Fprintf(w, "%s\t%s\n", p.msgs.Get(i18n.ServingsHeading), recipe.Value(r.Servings))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(p.writer, "\n%s\n", p.msgs.Get(i18n.IngredientsHeading))
	if err := p.printIngredientsTable(r.Ingredients); err != nil {
		return err
	}

	fmt.Fprintf(p.writer, "\n%s\n", p.msgs.Get(i18n.MethodHeading))
	for _, line := range strings.Split(recipe.Value(r.Method), "\n") {
		fmt.Fprintf(p.writer, "  %s\n", line)
	}

	return nil
}

// printIngredientsTable prints ingredients sorted by name
func (p *Printer) printIngredientsTable(ingredients recipe.Ingredients) error {
	if len(ingredients) == 0 {
		fmt.Fprintf(p.writer, "  -\n")
		return nil
	}

	keys := SortedIngredientKeys(ingredients)

	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	for _, key := range keys {
		ing := ingredients[key]
		fmt.Fprintf(w, "  %s\t%s\n", ing.Amount, ing.Name)
	}

	return w.Flush()
}

// printDifficultiesTable prints difficulties in table format
func (p *Printer) printDifficultiesTable(difficulties []recipe.Difficulty) error {
	if len(difficulties) == 0 {
		fmt.Fprintf(p.writer, "No difficulties found\n")
		return nil
	}

	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "INDEX\tNAME\tID\n")
	fmt.Fprintf(w, "-----\t----\t--\n")

	for _, d := range difficulties {
		fmt.Fprintf(w, "%d\t%s\t%s\n", d.Index, d.Name, d.ID)
	}

	return w.Flush()
}

// SortedIngredientKeys orders ingredient keys by ingredient name, then key
func SortedIngredientKeys(ingredients recipe.Ingredients) []string {
	keys := make([]string, 0, len(ingredients))
	for key := range ingredients {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := ingredients[keys[i]], ingredients[keys[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return keys[i] < keys[j]
	})
	return keys
}

// printJSON prints any object as JSON
func (p *Printer) printJSON(obj interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(obj)
}

// printYAML prints any object as YAML
func (p *Printer) printYAML(obj interface{}) error {
	encoder := yaml.NewEncoder(p.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(obj); err != nil {
		return err
	}
	return encoder.Close()
}
