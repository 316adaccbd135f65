package handlers

import (
	_ "embed"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-yaml"
)

//go:embed openapi.yaml
var openAPISpec []byte

const (
	swaggerDist    = "https://unpkg.com/swagger-ui-dist@5"
	openAPIYAMLURL = "/docs/openapi.yaml"
)

var docsPage = strings.NewReplacer(
	"{{dist}}", swaggerDist,
	"{{spec}}", openAPIYAMLURL,
).Replace(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Parking Control · API</title>
<link rel="stylesheet" href="{{dist}}/swagger-ui.css">
<style>html,body{margin:0}#docs{max-width:1100px;margin:0 auto}</style>
</head>
<body>
<div id="docs"></div>
<script src="{{dist}}/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({
  url: "{{spec}}",
  dom_id: "#docs",
  docExpansion: "list",
  defaultModelsExpandDepth: 0,
  tryItOutEnabled: true,
  presets: [SwaggerUIBundle.presets.apis],
  layout: "BaseLayout"
});
</script>
</body>
</html>`)

// SwaggerUI serves a page that renders the embedded OpenAPI document.
func SwaggerUI(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsPage))
}

func OpenAPISpec(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "application/yaml; charset=utf-8", openAPISpec)
}

// openAPIAsJSON converts the embedded YAML once, on first use.
var openAPIAsJSON = sync.OnceValues(func() ([]byte, error) {
	return yaml.YAMLToJSON(openAPISpec)
})

func OpenAPISpecJSON(ctx *gin.Context) {
	doc, err := openAPIAsJSON()
	if err != nil {
		RespondInternal(ctx, "Could not render API document", err)
		return
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}
