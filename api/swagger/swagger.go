package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutor Hours API",
        "description": "Role-gated tutoring hours workflow: tutors log sessions, admins review them",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Sessions", "description": "Tutor session drafts and submission"},
        {"name": "Admin", "description": "Review decisions and reporting"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Token pair rotated"},
                    "401": {"description": "Refresh token invalid"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "Token revoked"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List own sessions",
                "responses": {
                    "200": {"description": "Sessions ordered by date descending"}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Log a new tutoring session as a draft",
                "responses": {
                    "201": {"description": "Draft created"},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get one session with its review history",
                "responses": {
                    "200": {"description": "Session detail"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Sessions"],
                "summary": "Edit a draft session",
                "responses": {
                    "200": {"description": "Draft updated"},
                    "409": {"description": "Session is not an editable draft"}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Delete a draft session",
                "responses": {
                    "204": {"description": "Draft deleted"},
                    "409": {"description": "Session is not a deletable draft"}
                }
            }
        },
        "/sessions/{id}/submit": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Submit a draft session for review",
                "responses": {
                    "200": {"description": "Session submitted"},
                    "409": {"description": "Session is not a draft"}
                }
            }
        },
        "/admin/sessions": {
            "get": {
                "tags": ["Admin"],
                "summary": "List sessions across all tutors",
                "responses": {
                    "200": {"description": "Filtered sessions"}
                }
            }
        },
        "/admin/sessions/{id}/approve": {
            "post": {
                "tags": ["Admin"],
                "summary": "Approve a submitted session",
                "responses": {
                    "200": {"description": "Session approved"},
                    "409": {"description": "Session is not submitted"}
                }
            }
        },
        "/admin/sessions/{id}/reject": {
            "post": {
                "tags": ["Admin"],
                "summary": "Reject a submitted session",
                "responses": {
                    "200": {"description": "Session rejected"},
                    "409": {"description": "Session is not submitted"}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Aggregate session statistics",
                "responses": {
                    "200": {"description": "Per-status counts and per-tutor hours"}
                }
            }
        },
        "/admin/export/csv": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export filtered sessions as CSV",
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/admin/export/pdf": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the statistics summary as PDF",
                "responses": {
                    "200": {"description": "PDF document"}
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
                "details": {"type": "array", "items": {"type": "string"}}
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
