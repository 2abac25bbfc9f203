package api

// @title pagewidth API
// @version v1.0.0
// @description Page width settings, evaluation and live page sessions.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8778
// @BasePath /api
// @schemes http

import (
	"net/http"
	"pagewidth/logger"
	"pagewidth/version"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "Apache 2.0", "url": "http://www.apache.org/licenses/LICENSE-2.0.html"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["Health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/version": {"get": {"tags": ["Version"], "summary": "Get application version", "responses": {"200": {"description": "OK"}}}},
        "/settings/global": {
            "get": {"tags": ["Settings"], "summary": "Get global settings", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Settings"], "summary": "Save global settings", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/settings/site": {
            "get": {"tags": ["Settings"], "summary": "Get settings form for a page", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Settings"], "summary": "Save settings form for a page", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["Settings"], "summary": "Clear site overrides for a page", "responses": {"200": {"description": "OK"}}}
        },
        "/evaluate": {"post": {"tags": ["Evaluate"], "summary": "Evaluate a page", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/pages": {"post": {"tags": ["Pages"], "summary": "Open a page session", "responses": {"201": {"description": "Created"}}}},
        "/pages/{pageID}": {
            "get": {"tags": ["Pages"], "summary": "Get a page session", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Pages"], "summary": "Close a page session", "responses": {"204": {"description": "No Content"}}}
        },
        "/pages/{pageID}/messages": {"post": {"tags": ["Pages"], "summary": "Send a message to a page", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/pages/{pageID}/resize": {"post": {"tags": ["Pages"], "summary": "Resize a page", "responses": {"200": {"description": "OK"}}}},
        "/pages/{pageID}/fullscreen": {"post": {"tags": ["Pages"], "summary": "Change a page's fullscreen state", "responses": {"200": {"description": "OK"}}}},
        "/pages/{pageID}/notify": {"post": {"tags": ["Pages"], "summary": "Notify a page of a settings change", "responses": {"200": {"description": "OK"}}}},
        "/catalog/lookup": {"get": {"tags": ["Catalog"], "summary": "Look up catalog entries", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          version.AppVersion,
	Host:             "localhost:8778",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "pagewidth API",
	Description:      "Page width settings, evaluation and live page sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// RegisterDocsRoutes serves the registered swagger document.
func RegisterDocsRoutes(r chi.Router) {
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, req *http.Request) {
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			logger.Error("Swagger doc: %v", err)
			http.Error(w, "swagger document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	})
}
