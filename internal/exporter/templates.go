package exporter

import (
	"fmt"
	"os"

	"github.com/mpgamer75/code-altice/internal/config"
)

// DefaultPreamble opens every final notification
const DefaultPreamble = "Cordial Saludo\n\n" +
	"Debido a los repetidos intentos fallidos de login recibidos, a continuación, " +
	"les indico los detalles del hallazgo para que por favor procedan a canalizar su solución.\n\n"

// DefaultPostamble closes every final notification
const DefaultPostamble = "\nDespués de analizar los logon failures del usuario, se pudo comprobar lo siguiente: " +
	"Esta cuenta amerita realizar logoff/on de los equipos donde se encuentra logueado actualmente " +
	"y borrar los datos del credential manager, ya que el mismo puede deberse a cambios recientes " +
	"en la contraseña o a la necesidad de realizar el cambio.\n"

// Templates holds the fixed text wrapped around intermediate content
type Templates struct {
	Preamble  string
	Postamble string
}

// DefaultTemplates returns the built-in notification text
func DefaultTemplates() Templates {
	return Templates{Preamble: DefaultPreamble, Postamble: DefaultPostamble}
}

// LoadTemplates returns the built-in text with any configured file
// replacing its part verbatim.
func LoadTemplates(cfg config.TemplatesConfig) (Templates, error) {
	t := DefaultTemplates()

	if cfg.PreambleFile != "" {
		data, err := os.ReadFile(cfg.PreambleFile)
		if err != nil {
			return Templates{}, fmt.Errorf("failed to read preamble template: %w", err)
		}
		t.Preamble = string(data)
	}
	if cfg.PostambleFile != "" {
		data, err := os.ReadFile(cfg.PostambleFile)
		if err != nil {
			return Templates{}, fmt.Errorf("failed to read postamble template: %w", err)
		}
		t.Postamble = string(data)
	}

	return t, nil
}

// Compose wraps content with the preamble and postamble. A newline is
// inserted between content and postamble.
func (t Templates) Compose(content string) string {
	return t.Preamble + content + "\n" + t.Postamble
}
