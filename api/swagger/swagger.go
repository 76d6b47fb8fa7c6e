package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Risk API",
        "description": "Anxiety risk screening for individual students and class rosters",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assessments", "description": "Single student risk form"},
        {"name": "Rosters", "description": "Whole class roster screening"},
        {"name": "Operations", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition format"}
                }
            }
        },
        "/api/v1/assessments": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Score one student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssessmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AssessmentEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/assessments/report": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Printable result card",
                "consumes": ["application/json"],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssessmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "PDF attachment", "schema": {"type": "file"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/rosters/assessments": {
            "post": {
                "tags": ["Rosters"],
                "summary": "Score a roster CSV",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]},
                    {"name": "tier", "in": "query", "type": "string", "enum": ["LOW", "MODERATE", "HIGH"]},
                    {"name": "top", "in": "query", "type": "integer", "minimum": 1}
                ],
                "responses": {
                    "200": {"description": "Roster report or attachment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AssessmentRequest": {
            "type": "object",
            "required": ["gad7_score", "gpa", "attendance_rate", "psych_history", "failed_courses"],
            "properties": {
                "gad7_score": {"type": "integer", "minimum": 0, "maximum": 21},
                "gpa": {"type": "number", "minimum": 0},
                "attendance_rate": {"type": "number", "minimum": 0, "maximum": 100},
                "psych_history": {"type": "string", "enum": ["yes", "no"]},
                "failed_courses": {"type": "integer", "minimum": 0, "maximum": 1000}
            }
        },
        "RiskFactor": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "points": {"type": "integer"}
            }
        },
        "AssessmentResult": {
            "type": "object",
            "properties": {
                "score": {"type": "integer"},
                "tier": {"type": "string", "enum": ["LOW", "MODERATE", "HIGH"]},
                "factors": {"type": "array", "items": {"$ref": "#/definitions/RiskFactor"}},
                "message": {"type": "string"},
                "recommendation": {"type": "string"}
            }
        },
        "TierView": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "style": {"type": "string"},
                "icon": {"type": "string"}
            }
        },
        "AssessmentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "assessed_at": {"type": "string", "format": "date-time"},
                "input": {"type": "object"},
                "result": {"$ref": "#/definitions/AssessmentResult"},
                "view": {"$ref": "#/definitions/TierView"}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}}
            }
        },
        "AssessmentEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/AssessmentResponse"},
                "meta": {"type": "object"}
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
