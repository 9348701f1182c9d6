package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

const textSystemPrompt = "Du extrahierst strukturierte Daten aus deutschem Text. " +
	"Antworte NUR als reines JSON ohne Markdown oder Zusatztext."

func textUserPrompt(text string, today domain.Date, c *domain.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Text: %q\n\n", text)
	fmt.Fprintf(&b, "HEUTIGES DATUM: %s\n\n", today)
	b.WriteString("DATUM-REGELN:\n")
	b.WriteString("- Relative Angaben (z.B. \"in zwei Wochen\", \"morgen\", \"übermorgen\", \"nächsten Freitag\") immer in ein festes Datum umrechnen.\n")
	b.WriteString("- ablaufdatum IMMER \"DD.MM.YYYY\" oder null.\n\n")
	fmt.Fprintf(&b, "EINHEIT exakt aus:\n%s\n\n", mustJSON(c.Units()))
	fmt.Fprintf(&b, "KATEGORIE exakt aus:\n%s\n\n", mustJSON(c.Categories()))
	b.WriteString("JSON-Format:\n")
	fmt.Fprintf(&b, `{"name":"", "menge": 1, "einheit":%q, "kategorie":%q, "ablaufdatum":"DD.MM.YYYY"|null}`+"\n\n",
		c.DefaultUnit(), c.CatchAll())
	b.WriteString("Defaults:\n- menge=1\n")
	fmt.Fprintf(&b, "- einheit=%q wenn unklar\n- kategorie=%q wenn unklar\n", c.DefaultUnit(), c.CatchAll())
	return b.String()
}

func imagePrompt(today domain.Date, c *domain.Catalog) string {
	var b strings.Builder
	b.WriteString("Du analysierst ein Foto einer Produktsammlung (Vorrat oder Kühlschrank).\n\n")
	fmt.Fprintf(&b, "HEUTIGES DATUM: %s\n\n", today)
	b.WriteString("Ziel:\n")
	b.WriteString("- Erkenne sichtbare Produkte (keine Marken erfinden)\n")
	b.WriteString("- Zähle Einzelexemplare (z.B. jede Tomate), nicht Sträucher, Cluster oder Verpackungen\n")
	b.WriteString("- Mappe jedes Produkt auf GENAU EINE Kategorie aus der Liste\n")
	b.WriteString("- Schätze ein branchenübliches Ablaufdatum nur wenn sinnvoll\n")
	b.WriteString("- Gib confidence (0-1) an\n\n")
	fmt.Fprintf(&b, "Kategorien: %s\n", strings.Join(c.Categories(), ", "))
	fmt.Fprintf(&b, "Einheiten: %s\n", strings.Join(c.Units(), ", "))
	fmt.Fprintf(&b, "Wenn unklar: category %q und confidence < 0.5. Ohne erkennbare Einheit: unit %q.\n\n",
		c.CatchAll(), c.DefaultUnit())
	b.WriteString("ZÄHLREGELN:\n")
	b.WriteString("- Liefere für jedes sichtbare Exemplar eine Instanz in instances (Bounding Box, x,y,w,h normalisiert auf 0..1000, c = Instanz-Confidence 0..1).\n")
	b.WriteString("- quantity MUSS exakt der Anzahl instances entsprechen.\n")
	b.WriteString("- quantity_min = sicher sichtbar, quantity_max = plausibel sichtbar, quantity_best = bestes Urteil.\n")
	b.WriteString("- Bei Überlappung oder Verdeckung: quantity_min < quantity_max und confidence reduzieren.\n\n")
	b.WriteString("ABLAUFDATUM (expiry_guess):\n")
	b.WriteString("- Format DD.MM.YYYY, nur wenn die Produktart klar erkennbar ist, sonst null.\n")
	b.WriteString("- Richtwerte: Fleisch wenige Tage, Milchprodukte 7-14 Tage, Obst/Gemüse 3-7 Tage, Backware 2-4 Tage, Konserve/Getreide Monate.\n\n")
	b.WriteString("Lieber weniger Items als falsche. Gib ausschließlich valides JSON im Schema zurück; notes immer als string.\n")
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
