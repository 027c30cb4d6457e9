// Package notify formats and delivers the user-facing warnings raised by the
// macro subsystem.
package notify

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. Each key doubles as the en-US format string.
const (
	KeyOwnedItemsOnly = "You can only create macro buttons for owned Items"
	KeyNoActor        = "No controlled Actor is available to roll %s"
	KeyItemNotFound   = "%s does not have an item named %s"
)

var supported = []language.Tag{language.AmericanEnglish, language.BrazilianPortuguese}

var translations = map[language.Tag]map[string]string{
	language.AmericanEnglish: {
		KeyOwnedItemsOnly: KeyOwnedItemsOnly,
		KeyNoActor:        KeyNoActor,
		KeyItemNotFound:   KeyItemNotFound,
	},
	language.BrazilianPortuguese: {
		KeyOwnedItemsOnly: "Só é possível criar macros para Itens possuídos",
		KeyNoActor:        "Nenhum Ator controlado disponível para rolar %s",
		KeyItemNotFound:   "%s não possui um item chamado %s",
	},
}

// Printer renders message keys in one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a Printer for the closest supported match to locale.
// Unsupported locales fall back to en-US.
//
// Postcondition: Returns a usable Printer, or an error if locale is not a valid BCP 47 tag.
func NewPrinter(locale string) (*Printer, error) {
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("registering message %q for %s: %w", key, tag, err)
			}
		}
	}

	_, idx, _ := language.NewMatcher(supported).Match(requested)
	tag := supported[idx]
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(b))}, nil
}

// Tag returns the locale the Printer renders.
func (p *Printer) Tag() language.Tag { return p.tag }

// Sprintf renders key with args.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
