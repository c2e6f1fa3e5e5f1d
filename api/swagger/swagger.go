package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Clashes Detector API",
        "description": "Course catalog, clash detection and schedule optimisation over a university timetable grid.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Courses and sessions read from the timetable grid"},
        {"name": "Schedule", "description": "Clash detection, optimisation and export"},
        {"name": "Operations", "description": "Cache and service counters"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List courses, batches and departments found in the timetable",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Timetable source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Sessions and clashes of the selected courses",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{batch}/sessions": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Every section's sessions for one batch",
                "parameters": [
                    {"name": "batch", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clashes": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Detect clashes among the given sessions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClashRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/optimize": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Pick one section per course with the fewest clashes and gaps",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "A course has no section left", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "504": {"description": "Search timed out", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/export": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Download a schedule as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired proposal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cache": {
            "delete": {
                "tags": ["Operations"],
                "summary": "Drop the cached timetable grid",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Operations"],
                "summary": "Service counters as JSON",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CourseRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "section": {"type": "string"},
                "batch": {"type": "string"}
            }
        },
        "TimetableRequest": {
            "type": "object",
            "properties": {
                "courses": {"type": "array", "items": {"$ref": "#/definitions/CourseRef"}}
            },
            "required": ["courses"]
        },
        "SessionInput": {
            "type": "object",
            "properties": {
                "courseName": {"type": "string"},
                "section": {"type": "string"},
                "day": {"type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]},
                "timeSlot": {"type": "string"},
                "kind": {"type": "string", "enum": ["Lecture", "Lab"]},
                "room": {"type": "string"},
                "batch": {"type": "string"}
            },
            "required": ["courseName", "day", "timeSlot"]
        },
        "ClashRequest": {
            "type": "object",
            "properties": {
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/SessionInput"}},
                "normalize": {"type": "boolean"}
            },
            "required": ["sessions"]
        },
        "OptimizeRequest": {
            "type": "object",
            "properties": {
                "batches": {"type": "array", "items": {"type": "string"}},
                "courses": {"type": "array", "items": {"type": "string"}},
                "excludedSections": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                }
            },
            "required": ["batches", "courses"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "proposalId": {"type": "string"},
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/SessionInput"}}
            }
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
