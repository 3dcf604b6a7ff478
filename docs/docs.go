// Package docs embeds the OpenAPI description of the HTTP API and registers
// it with swag.
package docs

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed swagger.yaml
var swaggerYAML []byte

var (
	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
)

type spec struct{}

// ReadDoc returns the OpenAPI document as JSON
func (spec) ReadDoc() string {
	doc, err := JSON()
	if err != nil {
		return "{}"
	}
	return string(doc)
}

func init() {
	swag.Register(swag.Name, spec{})
}

// YAML returns the embedded OpenAPI document
func YAML() []byte {
	return swaggerYAML
}

// JSON returns the document converted to JSON
func JSON() ([]byte, error) {
	jsonOnce.Do(func() {
		var doc interface{}
		if jsonErr = yaml.Unmarshal(swaggerYAML, &doc); jsonErr != nil {
			return
		}
		jsonDoc, jsonErr = json.Marshal(doc)
	})
	return jsonDoc, jsonErr
}

// Handler serves the registered API document. JSON is returned unless the
// client asks for YAML.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "yaml" || r.Header.Get("Accept") == "application/yaml" {
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(swaggerYAML)
			return
		}
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "Failed to read API documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}
}
