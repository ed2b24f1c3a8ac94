// Package docs registers the OpenAPI description served at /swagger.
// Regenerate the full description from the handler annotations with `swag init`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Health Check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/matches": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Get matches with pagination and filters",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"},
                    {"type": "integer", "name": "competition_id", "in": "query"},
                    {"type": "integer", "name": "matchweek", "in": "query"},
                    {"type": "boolean", "name": "is_completed", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/admin/matches/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Get a match",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Delete a match",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/admin/matches/{id}/results": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Submit a match result",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SubmitMatchResultRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid winner or scores"}, "404": {"description": "Not Found"}, "422": {"description": "Result saved but scoring rules are missing or invalid"}}}
        },
        "/admin/matches/{id}/recalculate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Recalculate match points",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/admin/monitoring/anomalies": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["monitoring"], "summary": "Detect anomalies",
                "parameters": [{"type": "integer", "name": "competition_id", "in": "query"}, {"type": "integer", "name": "matchweek", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/monitoring/fix-errors": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["monitoring"], "summary": "Fix errors",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.FixErrorsRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/admin/monitoring/squads": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["monitoring"], "summary": "Get squads for a matchweek",
                "parameters": [{"type": "integer", "name": "competition_id", "in": "query", "required": true}, {"type": "integer", "name": "matchweek", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/admin/monitoring/player-scores": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["monitoring"], "summary": "Get player scores",
                "parameters": [{"type": "integer", "name": "competition_id", "in": "query"}, {"type": "integer", "name": "matchweek", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/monitoring/dashboard": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["monitoring"], "summary": "Get dashboard statistics",
                "parameters": [{"type": "integer", "name": "competition_id", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "models.SetScore": {
            "type": "object",
            "properties": {"pair1_score": {"type": "integer"}, "pair2_score": {"type": "integer"}}
        },
        "models.SubmitMatchResultRequest": {
            "type": "object",
            "properties": {
                "set1": {"$ref": "#/definitions/models.SetScore"},
                "set2": {"$ref": "#/definitions/models.SetScore"},
                "set3": {"$ref": "#/definitions/models.SetScore"},
                "winner_id": {"type": "integer"},
                "match_date": {"type": "string"}
            }
        },
        "models.FixErrorsRequest": {
            "type": "object",
            "required": ["fix_type"],
            "properties": {
                "fix_type": {"type": "string", "enum": ["recalculate_match_points", "recalculate_fantasy_points", "both"]},
                "competition_id": {"type": "integer"},
                "matchweek": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fantasy Doubles API",
	Description:      "Scoring and points propagation for the fantasy doubles league",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
