// Package swagger serves the static API document for the docs endpoint.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gradebook API",
        "description": "Grading configuration and score aggregation service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Grading Schemes", "description": "Weighted grading component configuration"},
        {"name": "Scores", "description": "Score submission, single and batch"},
        {"name": "Results", "description": "Aggregated reports and exports"},
        {"name": "Grade Bands", "description": "Letter grade band administration"},
        {"name": "Metrics", "description": "Runtime metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/grading-schemes": {
            "get": {
                "tags": ["Grading Schemes"],
                "summary": "Get the caller's grading scheme for a class/subject",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string", "required": true},
                    {"name": "subjectId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Scheme", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "post": {
                "tags": ["Grading Schemes"],
                "summary": "Create grading scheme",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid components or weights"},
                    "409": {"description": "Scheme already exists"},
                    "412": {"description": "Subject or teacher not approved"}
                }
            },
            "put": {
                "tags": ["Grading Schemes"],
                "summary": "Replace a scheme's components",
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Grading Schemes"],
                "summary": "Delete the caller's grading scheme",
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Scores reference the scheme"}
                }
            }
        },
        "/grading-schemes/class/{classId}": {
            "get": {
                "tags": ["Grading Schemes"],
                "summary": "List every grading scheme defined for a class",
                "parameters": [
                    {"name": "classId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Schemes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin only"},
                    "404": {"description": "Class not found"}
                }
            }
        },
        "/scores": {
            "get": {
                "tags": ["Scores"],
                "summary": "List class scores for the caller's scheme",
                "responses": {
                    "200": {"description": "Rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Scores"],
                "summary": "Record a student's component scores",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Submission does not match scheme components"},
                    "409": {"description": "Record already exists"}
                }
            },
            "put": {
                "tags": ["Scores"],
                "summary": "Overwrite a student's recorded scores",
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "No record to update"}
                }
            }
        },
        "/scores/batch": {
            "post": {
                "tags": ["Scores"],
                "summary": "Record scores for many students atomically",
                "responses": {
                    "201": {"description": "Applied"},
                    "422": {"description": "Batch rejected with per-student failures"}
                }
            },
            "patch": {
                "tags": ["Scores"],
                "summary": "Overwrite scores for many students atomically",
                "responses": {
                    "200": {"description": "Applied"},
                    "422": {"description": "Batch rejected with per-student failures"}
                }
            }
        },
        "/results/students/{id}": {
            "get": {
                "tags": ["Results"],
                "summary": "Get a student's scores across subjects in a class",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "classId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/students/{id}/report": {
            "get": {
                "tags": ["Results"],
                "summary": "Get a student's cumulative results across sessions and terms",
                "responses": {
                    "200": {"description": "Report"}
                }
            }
        },
        "/results/classes/{id}": {
            "get": {
                "tags": ["Results"],
                "summary": "Get the class result sheet for the active session/term",
                "responses": {
                    "200": {"description": "Sheet"}
                }
            }
        },
        "/results/classes/{id}/subjects/{subjectId}/stats": {
            "get": {
                "tags": ["Results"],
                "summary": "Get aggregated totals for a subject in a class",
                "responses": {
                    "200": {"description": "Statistics"}
                }
            }
        },
        "/results/classes/{id}/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Export the class result sheet as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/grade-bands": {
            "get": {
                "tags": ["Grade Bands"],
                "summary": "List the school's grade bands",
                "responses": {
                    "200": {"description": "Bands"}
                }
            },
            "put": {
                "tags": ["Grade Bands"],
                "summary": "Replace the school's grade bands",
                "responses": {
                    "200": {"description": "Bands"},
                    "400": {"description": "Overlapping or out-of-range bands"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/metrics/system": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Get a runtime metrics snapshot",
                "responses": {
                    "200": {"description": "Snapshot"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
