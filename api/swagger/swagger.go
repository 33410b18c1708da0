package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus CMS API",
        "description": "Make-up class scheduling and remedial-code attendance service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Make-up Sessions", "description": "Session lifecycle and scheduling suggestions"},
        {"name": "Remedial Codes", "description": "Attendance window control"},
        {"name": "Attendance", "description": "Student code submission"},
        {"name": "Workloads", "description": "Faculty workload reports"}
    ],
    "paths": {
        "/makeup/sessions": {
            "get": {
                "tags": ["Make-up Sessions"],
                "summary": "List a faculty member's sessions",
                "parameters": [
                    {"name": "facultyId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Make-up Sessions"],
                "summary": "Schedule a make-up session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/makeup/sessions/{id}": {
            "get": {
                "tags": ["Make-up Sessions"],
                "summary": "Session detail with roster marks and suggestions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/makeup/sessions/{id}/activate": {
            "post": {
                "tags": ["Remedial Codes"],
                "summary": "Open the attendance window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ActivateCodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/makeup/sessions/{id}/deactivate": {
            "post": {
                "tags": ["Remedial Codes"],
                "summary": "Close the window and complete the session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/makeup/sessions/{id}/regenerate": {
            "post": {
                "tags": ["Remedial Codes"],
                "summary": "Replace the remedial code",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/makeup/sessions/{id}/cancel": {
            "post": {
                "tags": ["Make-up Sessions"],
                "summary": "Cancel a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/makeup/sessions/{id}/code-status": {
            "get": {
                "tags": ["Remedial Codes"],
                "summary": "Poll code validity and countdown",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/makeup/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit a remedial code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Inactive or already marked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Expired code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/makeup/suggestions/{id}/accept": {
            "post": {
                "tags": ["Make-up Sessions"],
                "summary": "Accept a scheduling suggestion",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workloads": {
            "get": {
                "tags": ["Workloads"],
                "summary": "Faculty workload report",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workloads/recalculate": {
            "post": {
                "tags": ["Workloads"],
                "summary": "Queue a workload recalculation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WorkloadQuery"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workloads/export": {
            "get": {
                "tags": ["Workloads"],
                "summary": "Download the report as CSV or PDF",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "facultyId": {"type": "string"},
                "courseId": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-01"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "11:00"},
                "venue": {"type": "string"},
                "reason": {"type": "string", "enum": ["HOLIDAY", "SICK", "EVENT", "EXTRA", "OTHER"]},
                "notes": {"type": "string"}
            },
            "required": ["facultyId", "courseId", "date", "startTime", "endTime", "venue"]
        },
        "ActivateCodeRequest": {
            "type": "object",
            "properties": {
                "durationMinutes": {"type": "integer", "minimum": 1, "maximum": 480}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "A3X7K2"},
                "studentId": {"type": "string"}
            },
            "required": ["code", "studentId"]
        },
        "WorkloadQuery": {
            "type": "object",
            "properties": {
                "semester": {"type": "integer", "minimum": 1, "maximum": 8},
                "academicYear": {"type": "string", "example": "2025-2026"}
            },
            "required": ["semester", "academicYear"]
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
                "pagination": {"type": "object"},
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
