package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tennis Lesson Scheduler API",
        "description": "Builds weekly tennis lesson timetables from a roster of coaches and students.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Scheduler", "description": "Scheduling runs and stored timetable versions"},
        {"name": "Constraints", "description": "Scheduling constraint catalogue"},
        {"name": "Coaches", "description": "Coach scheduling preferences"},
        {"name": "Roster", "description": "Coach and student roster"}
    ],
    "paths": {
        "/lesson-schedules/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate a weekly lesson timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateLessonScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing to schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-schedules": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List stored versions for a term",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-schedules/{id}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Get one version with its entries",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Scheduler"],
                "summary": "Delete a draft version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Version is published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-schedules/{id}/stats": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Summarise a stored version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-schedules/{id}/export": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Download a version as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/lesson-schedules/{id}/publish": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Publish a version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-schedules/{id}/entries/{entryId}": {
            "patch": {
                "tags": ["Scheduler"],
                "summary": "Pin or unpin an entry",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "entryId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEntryLockRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"}
                }
            }
        },
        "/constraints": {
            "get": {
                "tags": ["Constraints"],
                "summary": "List constraints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/constraints/{id}": {
            "patch": {
                "tags": ["Constraints"],
                "summary": "Toggle or re-rank a constraint",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConstraintPatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Constraints"],
                "summary": "Replace a constraint value",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConstraintReplaceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid value", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coaches/{id}/preferences": {
            "get": {
                "tags": ["Coaches"],
                "summary": "Get coach preferences",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Coaches"],
                "summary": "Replace coach preferences",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CoachPreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "List the roster",
                "parameters": [
                    {"name": "coachId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/import": {
            "post": {
                "tags": ["Roster"],
                "summary": "Import coaches and students",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RosterImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/students/{id}": {
            "delete": {
                "tags": ["Roster"],
                "summary": "Remove a student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        }
    },
    "definitions": {
        "GenerateLessonScheduleRequest": {
            "type": "object",
            "properties": {
                "termId": {"type": "string"},
                "passes": {"type": "integer"},
                "seed": {"type": "integer"},
                "keepLocked": {"type": "boolean"}
            },
            "required": ["termId"]
        },
        "UpdateEntryLockRequest": {
            "type": "object",
            "properties": {
                "locked": {"type": "boolean"}
            },
            "required": ["locked"]
        },
        "ConstraintPatchRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "priority": {"type": "integer"},
                "description": {"type": "string"}
            }
        },
        "ConstraintReplaceRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "enabled": {"type": "boolean"},
                "priority": {"type": "integer"},
                "value": {"type": "object"}
            },
            "required": ["value"]
        },
        "CoachPreferencesRequest": {
            "type": "object",
            "properties": {
                "preferredSlots": {"type": "array", "items": {"type": "string", "enum": ["breakfast", "fruit", "rest"]}},
                "avoidSlots": {"type": "array", "items": {"type": "string", "enum": ["breakfast", "fruit", "rest"]}},
                "preferredDays": {"type": "array", "items": {"type": "string"}},
                "avoidDays": {"type": "array", "items": {"type": "string"}},
                "maxSessionsPerDay": {"type": "integer"}
            },
            "required": ["maxSessionsPerDay"]
        },
        "RosterCell": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "slot": {"type": "string", "enum": ["breakfast", "fruit", "rest"]}
            }
        },
        "RosterImportRequest": {
            "type": "object",
            "properties": {
                "coaches": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "name": {"type": "string"},
                            "preferences": {"$ref": "#/definitions/CoachPreferencesRequest"}
                        }
                    }
                },
                "students": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "name": {"type": "string"},
                            "coachId": {"type": "string"},
                            "lessonsPerWeek": {"type": "integer"},
                            "unavailableSlots": {"type": "array", "items": {"$ref": "#/definitions/RosterCell"}}
                        }
                    }
                }
            },
            "required": ["students"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
