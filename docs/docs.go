// Package docs registers the Swagger specification served at /swagger/.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "responses": {
                    "200": {"description": "data contains token and user"},
                    "401": {"description": "error.code: unauthorized"}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "responses": {
                    "201": {"description": "data contains the created user"},
                    "409": {"description": "error.code: conflict when the email is taken"},
                    "422": {"description": "error.code: validation_failed with per-field messages"}
                }
            }
        },
        "/home": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Landing page data",
                "responses": {
                    "200": {"description": "data contains upcoming_events, featured_events, categories"}
                }
            }
        },
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List published upcoming events",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains events, meta, and filters"}
                }
            }
        },
        "/events/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Show an event by slug",
                "parameters": [
                    {"type": "string", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the event detail"},
                    "404": {"description": "error.code: not_found"}
                }
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List all categories",
                "responses": {
                    "200": {"description": "data contains the category list"}
                }
            }
        },
        "/categories/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List events in a category",
                "parameters": [
                    {"type": "string", "name": "slug", "in": "path", "required": true},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains category, events, meta, filters"},
                    "404": {"description": "error.code: not_found"}
                }
            }
        },
        "/events/{eventID}/tickets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Register for an event",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "data contains the created ticket"},
                    "404": {"description": "error.code: not_found"},
                    "409": {"description": "error.code: conflict, error.fields.registration explains the failed precondition"}
                }
            }
        },
        "/my-tickets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "List the authenticated user's tickets",
                "responses": {
                    "200": {"description": "data contains tickets and meta"}
                }
            }
        },
        "/tickets/{ticketID}/cancel": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Cancel a ticket",
                "parameters": [
                    {"type": "string", "name": "ticketID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the updated ticket"},
                    "403": {"description": "error.code: forbidden"},
                    "404": {"description": "error.code: not_found"}
                }
            }
        },
        "/tickets/{ticketID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tickets"],
                "summary": "Withdraw from an event",
                "parameters": [
                    {"type": "string", "name": "ticketID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "error.code: forbidden"},
                    "404": {"description": "error.code: not_found"}
                }
            }
        },
        "/manage/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "List the organizer's events",
                "parameters": [
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "data contains events and meta"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "Create an event",
                "responses": {
                    "201": {"description": "data contains the created event"},
                    "422": {"description": "error.code: validation_failed with per-field messages"}
                }
            }
        },
        "/manage/events/cover": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "Upload a cover image",
                "parameters": [
                    {"type": "file", "name": "image", "in": "formData", "description": "Cover image file", "required": true}
                ],
                "responses": {
                    "201": {"description": "data contains cover_image"},
                    "400": {"description": "error.code: bad_request"},
                    "422": {"description": "error.code: validation_failed"}
                }
            }
        },
        "/manage/events/drafts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "List the organizer's draft events",
                "responses": {
                    "200": {"description": "data contains events and meta"}
                }
            }
        },
        "/manage/events/registrations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "Registration counts for the organizer's published events",
                "responses": {
                    "200": {"description": "data contains events with confirmed ticket counts"}
                }
            }
        },
        "/manage/events/{eventID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "Fetch an owned event for editing",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the event"},
                    "403": {"description": "error.code: forbidden"},
                    "404": {"description": "error.code: not_found"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "Update an event",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the updated event"},
                    "403": {"description": "error.code: forbidden"},
                    "422": {"description": "error.code: validation_failed with per-field messages"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "Delete an event",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "error.code: forbidden"},
                    "404": {"description": "error.code: not_found"}
                }
            }
        },
        "/manage/events/{eventID}/attendees": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["manage"],
                "summary": "List attendees of an owned event",
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data contains the attendee list"},
                    "403": {"description": "error.code: forbidden"},
                    "404": {"description": "error.code: not_found"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds the exported Swagger specification.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EventLive API",
	Description:      "Event listing and ticketing platform for online events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
